// Package events carries progress events from domain logic to downstream
// sinks. Emission is fire-and-forget: a full buffer or a failing sink never
// fails the user request that produced the event.
package events

import (
	"context"
	"log/slog"
	"time"

	id "onestack/pkg/domain"
)

// Action identifies what happened.
type Action string

const (
	ActionProgressUpdated Action = "progress_updated"
	ActionTopicCompleted  Action = "topic_completed"
	ActionDomainCompleted Action = "domain_completed"
)

// Event is emitted from the progress service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     id.UserID `json:"userId"`
	DomainID   string    `json:"domainId"`
	DomainName string    `json:"domainName"`
	TopicID    int       `json:"topicId,omitempty"`
	TopicName  string    `json:"topicName,omitempty"`
	Percentage int       `json:"percentage"`
	RequestID  string    `json:"requestId,omitempty"`
}

// Publisher accepts events for asynchronous delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Store persists delivered events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// ChannelPublisher hands events to a buffered channel drained by a Worker.
// When the buffer is full the event is dropped and counted in logs rather
// than blocking the request path.
type ChannelPublisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox exposes the receive side for the worker.
func (p *ChannelPublisher) Inbox() <-chan Event { return p.inbox }

func (p *ChannelPublisher) Publish(ctx context.Context, event Event) {
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "event buffer full, dropping event",
			"action", string(event.Action),
			"domain_id", event.DomainID,
		)
	}
}

// NopPublisher discards events. Used by tests that don't assert on them.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
