package events

import (
	"context"
	"time"

	"github.com/genypos/api/internal/database"
	"github.com/genypos/api/internal/enum"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PollStore is satisfied by *database.Queries.
type PollStore interface {
	ListOrdersUpdatedSince(ctx context.Context, since time.Time) ([]database.Order, error)
}

// Poller republishes orders changed by writers that bypass this process
// (other replicas, manual fixes), bounding how long observers can miss a
// change when push delivery is unavailable.
type Poller struct {
	store    PollStore
	pub      Publisher
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	since time.Time
	seen  map[uuid.UUID]time.Time
}

// NewPoller starts watching from the current instant.
func NewPoller(store PollStore, pub Publisher, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	p := &Poller{
		store:    store,
		pub:      pub,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		seen:     make(map[uuid.UUID]time.Time),
	}
	p.since = p.now()
	return p
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("order poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("order poller stopped")
			return nil
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("poll orders", zap.Error(err))
			}
		}
	}
}

// Poll publishes one order.updated event per order changed since the last
// poll.
func (p *Poller) Poll(ctx context.Context) error {
	// Overlap one interval so rows committed late with an earlier
	// updated_at are not skipped; seen filters the repeats.
	from := p.since.Add(-p.interval)
	started := p.now()

	orders, err := p.store.ListOrdersUpdatedSince(ctx, from)
	if err != nil {
		return err
	}

	for _, o := range orders {
		if last, ok := p.seen[o.ID]; ok && !o.UpdatedAt.After(last) {
			continue
		}
		p.seen[o.ID] = o.UpdatedAt
		err := p.pub.Publish(ctx, Event{
			Type:      enum.EventOrderUpdated,
			OrderID:   o.ID,
			OrderType: o.OrderType,
			Status:    o.Status,
			At:        o.UpdatedAt,
		})
		if err != nil {
			p.logger.Warn("publish polled change", zap.String("order_id", o.ID.String()), zap.Error(err))
		}
	}

	for id, at := range p.seen {
		if at.Before(from) {
			delete(p.seen, id)
		}
	}
	p.since = started
	return nil
}
