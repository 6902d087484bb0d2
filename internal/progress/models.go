// Package progress holds the domain model and the pure state-consistency
// logic of the tracker: reconciling stored completion state against the
// canonical topic catalog and deriving aggregate statistics.
package progress

import (
	"time"

	id "onestack/pkg/domain"
	dErrors "onestack/pkg/domain-errors"
)

// Topic is the smallest trackable unit of learning content.
// CompletedAt is non-nil iff Completed is true.
type Topic struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// DomainProgress is a user's per-domain record of topic completion and
// derived totals. TotalTopics and CompletedTopics are always recomputed from
// Topics, never patched incrementally.
type DomainProgress struct {
	DomainID        string    `json:"domainId"`
	DomainName      string    `json:"domainName"`
	TotalTopics     int       `json:"totalTopics"`
	CompletedTopics int       `json:"completedTopics"`
	LastUpdated     time.Time `json:"lastUpdated"`
	Topics          []Topic   `json:"topics"`
}

// Profile is the per-user progress document: every domain the user has
// touched plus the denormalized completed-topic total. Version guards the
// read-modify-write cycle on saves.
type Profile struct {
	UserID               id.UserID        `json:"userId"`
	Domains              []DomainProgress `json:"domainProgress"`
	TotalTopicsCompleted int              `json:"totalTopicsCompleted"`
	Version              int64            `json:"-"`
}

// Domain returns a pointer to the progress record for domainID, or nil.
func (p *Profile) Domain(domainID string) *DomainProgress {
	for i := range p.Domains {
		if p.Domains[i].DomainID == domainID {
			return &p.Domains[i]
		}
	}
	return nil
}

// Clone deep-copies the profile so stores can hand out snapshots without
// aliasing their internal state.
func (p *Profile) Clone() *Profile {
	out := &Profile{
		UserID:               p.UserID,
		TotalTopicsCompleted: p.TotalTopicsCompleted,
		Version:              p.Version,
		Domains:              make([]DomainProgress, len(p.Domains)),
	}
	for i, d := range p.Domains {
		copied := d
		copied.Topics = make([]Topic, len(d.Topics))
		for j, topic := range d.Topics {
			if topic.CompletedAt != nil {
				ts := *topic.CompletedAt
				topic.CompletedAt = &ts
			}
			copied.Topics[j] = topic
		}
		out.Domains[i] = copied
	}
	return out
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Time       time.Time `json:"time"`
	DomainID   string    `json:"domainId"`
	DomainName string    `json:"domainName"`
	TopicID    int       `json:"topicId"`
}

// TopicInput is the wire shape of a topic in an update request. Pointer
// fields distinguish "absent" from zero values so malformed elements are
// rejected instead of silently defaulted.
type TopicInput struct {
	ID          *int       `json:"id"`
	Name        *string    `json:"name"`
	Completed   *bool      `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// ValidateTopics checks the incoming array shape and converts it to the
// domain type. Any element missing id, name, or completed fails the whole
// request before anything is persisted.
func ValidateTopics(inputs []TopicInput) ([]Topic, error) {
	if inputs == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid topics data")
	}
	topics := make([]Topic, 0, len(inputs))
	seen := make(map[int]struct{}, len(inputs))
	for _, in := range inputs {
		if in.ID == nil || in.Name == nil || in.Completed == nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid topic format in topics array")
		}
		if _, dup := seen[*in.ID]; dup {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid topic format in topics array")
		}
		seen[*in.ID] = struct{}{}
		topics = append(topics, Topic{
			ID:          *in.ID,
			Name:        *in.Name,
			Completed:   *in.Completed,
			CompletedAt: in.CompletedAt,
		})
	}
	return topics, nil
}
