package stream

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

type mockClient struct {
	messages []any
	failSend bool
	closed   bool
}

func (m *mockClient) SendJSON(v any) error {
	if m.failSend {
		return errors.New("send failed")
	}
	m.messages = append(m.messages, v)
	return nil
}

func (m *mockClient) Close() error {
	m.closed = true
	return nil
}

func (m *mockClient) lastAck() (Ack, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if ack, ok := m.messages[i].(Ack); ok {
			return ack, true
		}
	}
	return Ack{}, false
}

func newTestHub() *Hub {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewHub([]int{1, 2, 3}, logger)
}

func TestHub_Subscribe(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)

	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{1, 2}})

	ack, ok := client.lastAck()
	if !ok || ack.Type != "ack" {
		t.Fatalf("expected ack, got %+v", client.messages)
	}
	if h.Subscribers(1) != 1 || h.Subscribers(2) != 1 {
		t.Errorf("subscriber counts = %d/%d, want 1/1", h.Subscribers(1), h.Subscribers(2))
	}
}

func TestHub_SubscribeUnknownProduct(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)

	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{99}})

	ack, ok := client.lastAck()
	if !ok || ack.Type != "error" {
		t.Fatalf("expected error ack, got %+v", client.messages)
	}
	if h.Subscribers(99) != 0 {
		t.Errorf("Subscribers(99) = %d, want 0", h.Subscribers(99))
	}
}

func TestHub_SubscribeIdempotent(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)

	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{1}})
	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{1}})

	if h.Subscribers(1) != 1 {
		t.Errorf("Subscribers(1) = %d, want 1", h.Subscribers(1))
	}
	// Second identical subscribe adds nothing new.
	ack, _ := client.lastAck()
	if ack.Type != "error" {
		t.Errorf("repeat subscribe ack type = %q, want error", ack.Type)
	}
}

func TestHub_BroadcastRouting(t *testing.T) {
	h := newTestHub()
	sub := &mockClient{}
	other := &mockClient{}
	h.Register(sub)
	h.Register(other)

	h.HandleCommand(sub, Command{Action: ActionSubscribe, ProductIDs: []int{1}})
	h.HandleCommand(other, Command{Action: ActionSubscribe, ProductIDs: []int{2}})

	h.Broadcast(model.TickEvent{
		ProductID: 1,
		Record:    model.PriceRecord{Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Price: 42},
	})

	var ticks []TickMessage
	for _, msg := range sub.messages {
		if tick, ok := msg.(TickMessage); ok {
			ticks = append(ticks, tick)
		}
	}
	if len(ticks) != 1 {
		t.Fatalf("subscriber got %d ticks, want 1", len(ticks))
	}
	if ticks[0].ProductID != 1 || ticks[0].Value != 42 {
		t.Errorf("tick = %+v, want product 1 at 42", ticks[0])
	}
	if !strings.HasPrefix(ticks[0].Date, "2026-03-01T12:00:00") {
		t.Errorf("tick date = %q, want RFC 3339 timestamp", ticks[0].Date)
	}

	for _, msg := range other.messages {
		if _, ok := msg.(TickMessage); ok {
			t.Error("unsubscribed client received a tick")
		}
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)

	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{1, 2}})
	h.HandleCommand(client, Command{Action: ActionUnsubscribe, ProductIDs: []int{1}})

	if h.Subscribers(1) != 0 {
		t.Errorf("Subscribers(1) = %d, want 0", h.Subscribers(1))
	}
	if h.Subscribers(2) != 1 {
		t.Errorf("Subscribers(2) = %d, want 1", h.Subscribers(2))
	}
}

func TestHub_UnsubscribeAll(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)

	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{1, 2, 3}})
	h.HandleCommand(client, Command{Action: ActionUnsubscribeAll})

	for id := 1; id <= 3; id++ {
		if h.Subscribers(id) != 0 {
			t.Errorf("Subscribers(%d) = %d, want 0", id, h.Subscribers(id))
		}
	}
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)
	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{1}})

	h.Unregister(client)

	if !client.closed {
		t.Error("Unregister did not close the client")
	}
	if h.Subscribers(1) != 0 {
		t.Errorf("Subscribers(1) = %d, want 0", h.Subscribers(1))
	}
}

func TestHub_FailingClientDropped(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)
	h.HandleCommand(client, Command{Action: ActionSubscribe, ProductIDs: []int{1}})

	client.failSend = true
	h.Broadcast(model.TickEvent{
		ProductID: 1,
		Record:    model.PriceRecord{Timestamp: time.Now().UTC(), Price: 7},
	})

	if !client.closed {
		t.Error("failing client was not dropped")
	}
	if h.Subscribers(1) != 0 {
		t.Errorf("Subscribers(1) = %d, want 0", h.Subscribers(1))
	}
}

func TestHub_UnknownAction(t *testing.T) {
	h := newTestHub()
	client := &mockClient{}
	h.Register(client)

	h.HandleCommand(client, Command{Action: "bogus"})

	ack, ok := client.lastAck()
	if !ok || ack.Type != "error" {
		t.Fatalf("expected error ack, got %+v", client.messages)
	}
}
