// Package events carries order change notifications from the write path to
// observers: WebSocket subscribers, the message broker, and the polling
// fallback. Events are refetch signals; observers load authoritative state
// themselves, so a duplicate delivery is harmless.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event describes one change to an order.
type Event struct {
	Type      string    `json:"type"`
	OrderID   uuid.UUID `json:"order_id"`
	OrderType string    `json:"order_type"`
	Status    string    `json:"status"`
	ItemID    string    `json:"item_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher delivers events to one destination.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

// Multi fans an event out to every publisher. One failing destination does
// not stop delivery to the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) error { return nil })
