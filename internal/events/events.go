// Package events publishes domain events to a message broker.
package events

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks micasa/internal/events Publisher

// Routing keys.
const (
	ListingCreated  = "listing.created"
	ListingUpdated  = "listing.updated"
	ListingDeleted  = "listing.deleted"
	ReviewCreated   = "review.created"
	WishlistToggled = "wishlist.toggled"
)

// Event is the JSON body of a published message.
type Event struct {
	Type       string         `json:"type"`
	ListingID  int64          `json:"listingId,omitempty"`
	UID        string         `json:"uid,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// New builds an event stamped with the current time.
func New(eventType string, lid int64, uid string, data map[string]any) Event {
	return Event{Type: eventType, ListingID: lid, UID: uid, Data: data, OccurredAt: time.Now().UTC()}
}

// Publisher sends events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emit publishes event and logs a failure instead of returning it.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event", event.Type).Warn("failed to publish event")
	}
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*RabbitPublisher)(nil)
)
