package service

import (
	"context"
	"errors"
	"time"

	"onestack/internal/events"
	"onestack/internal/progress"
	id "onestack/pkg/domain"
	dErrors "onestack/pkg/domain-errors"
	"onestack/pkg/platform/sentinel"
	"onestack/pkg/requestcontext"
)

// UpdateProgress is the authoritative write path for a topic-state change.
//
// The incoming array replaces the domain's whole topic list (last writer
// wins at domain granularity). Aggregates are always recomputed from the
// topic arrays, never patched, and the profile is persisted in one
// version-guarded write so the domain records and the denormalized user
// total change together.
func (s *Service) UpdateProgress(ctx context.Context, userID id.UserID, req UpdateRequest) (*UpdateResult, error) {
	ctx, span := s.tracer.Start(ctx, "progress.Update", spanAttrs(userID.String(), req.DomainID))
	defer span.End()

	if userID.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user not authenticated")
	}
	if req.DomainID == "" || req.DomainName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "missing required fields")
	}

	// Validation happens before any store access; a malformed request can
	// never leave a partial write behind.
	incoming, err := progress.ValidateTopics(req.Topics)
	if err != nil {
		return nil, err
	}

	// The canonical list is authoritative for membership when the domain is
	// known. Unknown domains pass through shape-validated: the catalog is
	// external configuration, not a gate.
	if domain, ok := s.catalog.Get(req.DomainID); ok {
		incoming = progress.ReconcileTopics(domain.Topics, incoming)
	}

	requestID := requestcontext.RequestID(ctx)
	now := requestcontext.Now(ctx)

	for attempt := 1; ; attempt++ {
		profile, err := s.store.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
			}
			s.metrics.ProgressUpdateErrors.Inc()
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update domain progress")
		}

		prior := profile.Domain(req.DomainID)
		stamped, transitions := stampCompletions(incoming, prior, now)
		stats := progress.AggregateDomain(stamped)

		priorPercentage := 0
		if prior != nil {
			priorPercentage = progress.Percentage(prior.CompletedTopics, prior.TotalTopics)
		}

		record := progress.DomainProgress{
			DomainID:        req.DomainID,
			DomainName:      req.DomainName,
			TotalTopics:     stats.TotalTopics,
			CompletedTopics: stats.CompletedTopics,
			LastUpdated:     now,
			Topics:          stamped,
		}

		if prior != nil {
			*prior = record
		} else {
			profile.Domains = append(profile.Domains, record)
		}

		// Summed over every domain record, never incremented: partial
		// failures can't accumulate drift in a value that is recomputed from
		// scratch each write.
		profile.TotalTopicsCompleted = progress.AggregateUser(profile.Domains).TotalTopicsCompleted

		err = s.store.Save(ctx, profile)
		if err == nil {
			s.cache.Invalidate(ctx, userID)
			s.recordUpdate(ctx, userID, record, transitions, priorPercentage, stats.Percentage, requestID)
			return &UpdateResult{
				DomainProgress:       record,
				TotalTopicsCompleted: profile.TotalTopicsCompleted,
			}, nil
		}

		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.SaveConflicts.Inc()
			if attempt < maxSaveAttempts {
				continue
			}
			s.metrics.ProgressUpdateErrors.Inc()
			s.logger.WarnContext(ctx, "progress update lost version race repeatedly",
				"user_id", userID.String(),
				"domain_id", req.DomainID,
				"request_id", requestID,
			)
			return nil, dErrors.New(dErrors.CodeConflict, "progress was updated concurrently, please retry")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		s.metrics.ProgressUpdateErrors.Inc()
		s.logger.ErrorContext(ctx, "failed to persist progress update",
			"error", err,
			"user_id", userID.String(),
			"domain_id", req.DomainID,
			"request_id", requestID,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update domain progress")
	}
}

// stampCompletions applies server-side completedAt stamping against the
// previously stored state. A topic newly transitioning to complete gets the
// request time; one already complete keeps its original stamp; an incomplete
// topic carries no stamp. Client-supplied timestamps are ignored, which is
// why callers must adopt the returned record rather than trust their
// optimistic copy. Also returns the newly completed topics.
func stampCompletions(incoming []progress.Topic, prior *progress.DomainProgress, now time.Time) ([]progress.Topic, []progress.Topic) {
	var priorByID map[int]progress.Topic
	if prior != nil {
		priorByID = make(map[int]progress.Topic, len(prior.Topics))
		for _, t := range prior.Topics {
			priorByID[t.ID] = t
		}
	}

	out := make([]progress.Topic, len(incoming))
	var transitions []progress.Topic
	for i, t := range incoming {
		if !t.Completed {
			t.CompletedAt = nil
			out[i] = t
			continue
		}
		if prev, ok := priorByID[t.ID]; ok && prev.Completed && prev.CompletedAt != nil {
			ts := *prev.CompletedAt
			t.CompletedAt = &ts
		} else {
			ts := now
			t.CompletedAt = &ts
			transitions = append(transitions, t)
		}
		out[i] = t
	}
	return out, transitions
}

func (s *Service) recordUpdate(ctx context.Context, userID id.UserID, record progress.DomainProgress, transitions []progress.Topic, prevPct, newPct int, requestID string) {
	s.metrics.ProgressUpdates.Inc()
	s.metrics.TopicsCompleted.Add(float64(len(transitions)))

	s.logger.InfoContext(ctx, "domain progress updated",
		"user_id", userID.String(),
		"domain_id", record.DomainID,
		"completed_topics", record.CompletedTopics,
		"total_topics", record.TotalTopics,
		"request_id", requestID,
	)

	base := events.Event{
		Timestamp:  record.LastUpdated,
		UserID:     userID,
		DomainID:   record.DomainID,
		DomainName: record.DomainName,
		Percentage: newPct,
		RequestID:  requestID,
	}

	for _, t := range transitions {
		ev := base
		ev.Action = events.ActionTopicCompleted
		ev.TopicID = t.ID
		ev.TopicName = t.Name
		s.publisher.Publish(ctx, ev)
	}

	if newPct == 100 && prevPct < 100 {
		s.metrics.DomainsCompleted.Inc()
		ev := base
		ev.Action = events.ActionDomainCompleted
		s.publisher.Publish(ctx, ev)
	}

	ev := base
	ev.Action = events.ActionProgressUpdated
	s.publisher.Publish(ctx, ev)
}
