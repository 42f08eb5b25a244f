package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/genypos/api/internal/enum"
	"github.com/genypos/api/internal/events"
	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, filter Filter) *Client {
	return &Client{
		hub:    hub,
		filter: filter,
		send:   make(chan []byte, sendBuffer),
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx) //nolint:errcheck
	t.Cleanup(cancel)
	return hub, cancel
}

func testEvent(orderType string) events.Event {
	return events.Event{
		Type:      enum.EventOrderCreated,
		OrderID:   uuid.New(),
		OrderType: orderType,
		Status:    enum.OrderStatusPending,
		At:        time.Now(),
	}
}

func expectEvent(t *testing.T, c *Client, want events.Event) {
	t.Helper()
	select {
	case msg := <-c.send:
		var got events.Event
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if got.Type != want.Type || got.OrderID != want.OrderID {
			t.Errorf("got %s %s, want %s %s", got.Type, got.OrderID, want.Type, want.OrderID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client did not receive message")
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRegistration(t *testing.T) {
	hub, _ := startHub(t)

	client := mockClient(hub, Filter{Role: enum.RoleKitchen})
	if !hub.Register(client) {
		t.Fatal("register on a running hub failed")
	}
	time.Sleep(10 * time.Millisecond)

	if n := hub.ClientCount(); n != 1 {
		t.Fatalf("expected 1 client, got %d", n)
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if n := hub.ClientCount(); n != 0 {
		t.Fatalf("expected 0 clients, got %d", n)
	}
	if _, ok := <-client.send; ok {
		t.Fatal("send channel should be closed after unregister")
	}
}

func TestPublishRespectsRoleVisibility(t *testing.T) {
	hub, _ := startHub(t)

	kitchen := mockClient(hub, Filter{Role: enum.RoleKitchen})
	captain := mockClient(hub, Filter{Role: enum.RoleCaptain})
	driver := mockClient(hub, Filter{Role: enum.RoleDelivery})
	for _, c := range []*Client{kitchen, captain, driver} {
		hub.Register(c)
	}

	delivery := testEvent(enum.OrderTypeDelivery)
	if err := hub.Publish(context.Background(), delivery); err != nil {
		t.Fatalf("publish: %v", err)
	}
	expectEvent(t, kitchen, delivery)
	expectEvent(t, driver, delivery)
	expectNothing(t, captain)

	dineIn := testEvent(enum.OrderTypeDineIn)
	if err := hub.Publish(context.Background(), dineIn); err != nil {
		t.Fatalf("publish: %v", err)
	}
	expectEvent(t, kitchen, dineIn)
	expectEvent(t, captain, dineIn)
	expectNothing(t, driver)
}

func TestPublishToTrackingClient(t *testing.T) {
	hub, _ := startHub(t)

	tracked := testEvent(enum.OrderTypeDelivery)
	tracker := mockClient(hub, Filter{OrderID: tracked.OrderID})
	hub.Register(tracker)

	other := testEvent(enum.OrderTypeDelivery)
	hub.Publish(context.Background(), other)   //nolint:errcheck
	hub.Publish(context.Background(), tracked) //nolint:errcheck

	expectEvent(t, tracker, tracked)
	expectNothing(t, tracker)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub, _ := startHub(t)

	slow := &Client{hub: hub, filter: Filter{Role: enum.RoleMG}, send: make(chan []byte, 1)}
	hub.Register(slow)

	hub.Publish(context.Background(), testEvent(enum.OrderTypeCounter)) //nolint:errcheck
	hub.Publish(context.Background(), testEvent(enum.OrderTypeCounter)) //nolint:errcheck
	time.Sleep(20 * time.Millisecond)

	if n := hub.ClientCount(); n != 0 {
		t.Fatalf("slow client should be dropped, %d clients remain", n)
	}
}

func TestRunClosesClientsOnShutdown(t *testing.T) {
	hub, cancel := startHub(t)

	client := mockClient(hub, Filter{Role: enum.RoleAdmin})
	hub.Register(client)
	cancel()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("send channel not closed on shutdown")
	}

	if hub.Register(mockClient(hub, Filter{})) {
		t.Fatal("register should fail after shutdown")
	}
}

func TestPublishAfterShutdown(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx) //nolint:errcheck
		close(stopped)
	}()
	cancel()
	<-stopped

	// The buffer has room, but nothing will drain it any more.
	for i := 0; i < 10; i++ {
		if err := hub.Publish(context.Background(), testEvent(enum.OrderTypeDelivery)); !errors.Is(err, ErrHubClosed) {
			t.Fatalf("publish %d: error = %v, want ErrHubClosed", i, err)
		}
	}
	if n := len(hub.broadcast); n != 0 {
		t.Errorf("queued events = %d, want 0", n)
	}
}

func TestFilterMatch(t *testing.T) {
	orderID := uuid.New()
	tests := []struct {
		name   string
		filter Filter
		event  events.Event
		want   bool
	}{
		{"kitchen sees delivery", Filter{Role: enum.RoleKitchen}, events.Event{OrderType: enum.OrderTypeDelivery}, true},
		{"captain skips delivery", Filter{Role: enum.RoleCaptain}, events.Event{OrderType: enum.OrderTypeDelivery}, false},
		{"captain sees counter", Filter{Role: enum.RoleCaptain}, events.Event{OrderType: enum.OrderTypeCounter}, true},
		{"driver skips dine-in", Filter{Role: enum.RoleDelivery}, events.Event{OrderType: enum.OrderTypeDineIn}, false},
		{"tracker sees own order", Filter{OrderID: orderID}, events.Event{OrderID: orderID}, true},
		{"tracker skips others", Filter{OrderID: orderID}, events.Event{OrderID: uuid.New()}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Match(tc.event); got != tc.want {
				t.Errorf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}
