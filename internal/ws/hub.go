package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/genypos/api/internal/events"
	"github.com/genypos/api/internal/orderstate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrHubClosed = errors.New("hub is not running")

// Filter selects which order events a client receives. A tracking client
// sets OrderID and sees only that order; staff clients see what their role
// may see.
type Filter struct {
	Role    string
	OrderID uuid.UUID
}

func (f Filter) Match(e events.Event) bool {
	if f.OrderID != uuid.Nil {
		return e.OrderID == f.OrderID
	}
	return orderstate.VisibleTo(f.Role, e.OrderType)
}

// Hub maintains the set of active clients and fans order events out to them.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan events.Event

	// closed once Run returns
	done chan struct{}

	logger *zap.Logger

	// guards clients for readers outside Run
	mu sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, closing
// every client's send channel on the way out.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			message, err := json.Marshal(e)
			if err != nil {
				h.logger.Error("marshal event", zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				if !client.filter.Match(e) {
					continue
				}
				select {
				case client.send <- message:
				default:
					// Slow client; drop it and let it reconnect.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropping slow websocket client", zap.String("role", client.filter.Role))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues e for delivery to matching clients. It satisfies
// events.Publisher.
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	// broadcast is buffered, so a stopped hub must be ruled out first.
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	select {
	case h.broadcast <- e:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register adds a client. It reports false when the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
