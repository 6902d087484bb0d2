package events

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "onestack/pkg/domain"
)

func TestChannelPublisherDelivers(t *testing.T) {
	p := NewChannelPublisher(4, slog.New(slog.DiscardHandler))

	p.Publish(context.Background(), Event{Action: ActionTopicCompleted, DomainID: "dsa"})

	select {
	case got := <-p.Inbox():
		assert.Equal(t, ActionTopicCompleted, got.Action)
		assert.Equal(t, "dsa", got.DomainID)
	default:
		t.Fatal("expected event in inbox")
	}
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	p := NewChannelPublisher(1, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	p.Publish(ctx, Event{Action: ActionTopicCompleted})
	// Buffer full: must not block.
	p.Publish(ctx, Event{Action: ActionDomainCompleted})

	assert.Len(t, p.Inbox(), 1)
}

func TestInMemoryStoreBounded(t *testing.T) {
	s := NewInMemoryStore(3)
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	for i := 0; i < 5; i++ {
		assert.NoError(t, s.Append(ctx, Event{UserID: userID, TopicID: i}))
	}

	got := s.Events()
	assert.Len(t, got, 3)
	assert.Equal(t, 2, got[0].TopicID, "oldest retained event after eviction")
	assert.Equal(t, 4, got[2].TopicID)
}
