package service

import (
	"context"
	"errors"

	"onestack/internal/progress"
	id "onestack/pkg/domain"
	dErrors "onestack/pkg/domain-errors"
	"onestack/pkg/platform/sentinel"
)

// profile loads a user's profile, preferring the read cache. Cache misses
// fall through to the store and repopulate the cache.
func (s *Service) profile(ctx context.Context, userID id.UserID) (*progress.Profile, error) {
	if p, hit := s.cache.Get(ctx, userID); hit {
		return p, nil
	}

	p, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch domains progress")
	}

	s.cache.Set(ctx, p)
	return p, nil
}

// GetDomainProgress returns the stored record for one domain, or nil when
// the user has no progress there yet. Callers fall back to the canonical
// topic list on nil.
func (s *Service) GetDomainProgress(ctx context.Context, userID id.UserID, domainID string) (*progress.DomainProgress, error) {
	ctx, span := s.tracer.Start(ctx, "progress.GetDomain", spanAttrs(userID.String(), domainID))
	defer span.End()

	if userID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated")
	}

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Domain(domainID), nil
}

// AllDomainsProgress returns every domain record plus the denormalized
// completed-topic total.
func (s *Service) AllDomainsProgress(ctx context.Context, userID id.UserID) ([]progress.DomainProgress, int, error) {
	ctx, span := s.tracer.Start(ctx, "progress.GetAll", spanAttrs(userID.String(), ""))
	defer span.End()

	if userID.IsZero() {
		return nil, 0, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated")
	}

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if p.Domains == nil {
		return []progress.DomainProgress{}, p.TotalTopicsCompleted, nil
	}
	return p.Domains, p.TotalTopicsCompleted, nil
}

// RecentActivity flattens completed topics across all domains into a feed,
// most recent first, capped at maxRecentActivity entries.
func (s *Service) RecentActivity(ctx context.Context, userID id.UserID) ([]progress.ActivityEntry, error) {
	ctx, span := s.tracer.Start(ctx, "progress.RecentActivity", spanAttrs(userID.String(), ""))
	defer span.End()

	if userID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated")
	}

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]progress.ActivityEntry, 0, maxRecentActivity)
	for _, domain := range p.Domains {
		for _, topic := range domain.Topics {
			if !topic.Completed {
				continue
			}
			entry := progress.ActivityEntry{
				Type:       "completed",
				Title:      "Completed " + topic.Name,
				DomainID:   domain.DomainID,
				DomainName: domain.DomainName,
				TopicID:    topic.ID,
			}
			if topic.CompletedAt != nil {
				entry.Time = *topic.CompletedAt
			}
			entries = append(entries, entry)
		}
	}

	sortActivity(entries)
	if len(entries) > maxRecentActivity {
		entries = entries[:maxRecentActivity]
	}
	return entries, nil
}
