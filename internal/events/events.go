package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Listing lifecycle event types.
const (
	CropPostCreated       = "crop_post.created"
	CropPostUpdated       = "crop_post.updated"
	CropPostStatusChanged = "crop_post.status_changed"
	CropPostDeleted       = "crop_post.deleted"
)

type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	ListingID  int64             `json:"listing_id"`
	ActorID    int64             `json:"actor_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func New(eventType string, listingID, actorID int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ListingID:  listingID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// With returns a copy of e carrying an extra attribute.
func (e Event) With(key, value string) Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}

// Publisher delivers lifecycle events. Publishing is fire-and-forget from the
// caller's point of view: a returned error is logged, never surfaced to clients.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
