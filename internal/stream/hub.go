package stream

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/projectstockmarket/stockmarket/internal/model"
)

// timeLayout is the wire format for tick timestamps.
const timeLayout = time.RFC3339Nano

// Command actions accepted over the socket.
const (
	ActionSubscribe      = "subscribe"
	ActionUnsubscribe    = "unsubscribe"
	ActionUnsubscribeAll = "unsubscribe_all"
)

// Command is a client request to change its subscriptions.
type Command struct {
	Action     string `json:"action"`
	ProductIDs []int  `json:"product_ids,omitempty"`
}

// Ack confirms or rejects a command.
type Ack struct {
	Type    string `json:"type"` // "ack" or "error"
	Message string `json:"message"`
}

// TickMessage is one price update pushed to a subscriber.
type TickMessage struct {
	Type      string `json:"type"` // always "tick"
	ProductID int    `json:"product_id"`
	Date      string `json:"date"`
	Value     int    `json:"value"`
}

// ClientConn is the slice of a websocket connection the hub needs.
type ClientConn interface {
	SendJSON(v any) error
	Close() error
}

// Hub routes tick events to subscribed clients.
type Hub struct {
	validIDs map[int]bool
	logger   *slog.Logger

	mu          sync.RWMutex
	subscribers map[int]map[ClientConn]bool
	clientSubs  map[ClientConn]map[int]bool
}

// NewHub creates a hub that accepts subscriptions for the given
// product ids.
func NewHub(productIDs []int, logger *slog.Logger) *Hub {
	valid := make(map[int]bool, len(productIDs))
	for _, id := range productIDs {
		valid[id] = true
	}
	return &Hub{
		validIDs:    valid,
		logger:      logger,
		subscribers: make(map[int]map[ClientConn]bool),
		clientSubs:  make(map[ClientConn]map[int]bool),
	}
}

// Register adds a client with no subscriptions.
func (h *Hub) Register(client ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clientSubs[client] = make(map[int]bool)
}

// Unregister drops the client from every product and closes it.
func (h *Hub) Unregister(client ClientConn) {
	h.mu.Lock()
	if subs, ok := h.clientSubs[client]; ok {
		for id := range subs {
			delete(h.subscribers[id], client)
			if len(h.subscribers[id]) == 0 {
				delete(h.subscribers, id)
			}
		}
		delete(h.clientSubs, client)
	}
	h.mu.Unlock()

	if err := client.Close(); err != nil {
		h.logger.Debug("Client close failed", "error", err)
	}
}

// HandleCommand applies a subscription command from a client.
func (h *Hub) HandleCommand(client ClientConn, cmd Command) {
	switch cmd.Action {
	case ActionSubscribe:
		h.handleSubscribe(client, cmd)
	case ActionUnsubscribe:
		h.handleUnsubscribe(client, cmd)
	case ActionUnsubscribeAll:
		h.handleUnsubscribeAll(client)
	default:
		h.send(client, Ack{Type: "error", Message: "unknown action: " + cmd.Action})
	}
}

func (h *Hub) handleSubscribe(client ClientConn, cmd Command) {
	h.mu.Lock()

	var added []int
	for _, id := range cmd.ProductIDs {
		if !h.validIDs[id] {
			continue
		}
		subs, ok := h.clientSubs[client]
		if !ok {
			subs = make(map[int]bool)
			h.clientSubs[client] = subs
		}
		if subs[id] {
			continue
		}
		subs[id] = true
		if h.subscribers[id] == nil {
			h.subscribers[id] = make(map[ClientConn]bool)
		}
		h.subscribers[id][client] = true
		added = append(added, id)
	}
	h.mu.Unlock()

	if len(added) == 0 {
		h.send(client, Ack{Type: "error", Message: "no valid new product ids"})
		return
	}
	h.send(client, Ack{Type: "ack", Message: fmt.Sprintf("subscribed to %v", added)})
}

func (h *Hub) handleUnsubscribe(client ClientConn, cmd Command) {
	h.mu.Lock()

	var removed []int
	if subs, ok := h.clientSubs[client]; ok {
		for _, id := range cmd.ProductIDs {
			if subs[id] {
				delete(subs, id)
				delete(h.subscribers[id], client)
				removed = append(removed, id)
			}
		}
	}
	h.mu.Unlock()

	if len(removed) == 0 {
		h.send(client, Ack{Type: "error", Message: fmt.Sprintf("not subscribed to %v", cmd.ProductIDs)})
		return
	}
	h.send(client, Ack{Type: "ack", Message: fmt.Sprintf("unsubscribed from %v", removed)})
}

func (h *Hub) handleUnsubscribeAll(client ClientConn) {
	h.mu.Lock()
	if subs, ok := h.clientSubs[client]; ok {
		for id := range subs {
			delete(h.subscribers[id], client)
		}
		h.clientSubs[client] = make(map[int]bool)
	}
	h.mu.Unlock()

	h.send(client, Ack{Type: "ack", Message: "unsubscribed from all products"})
}

// Broadcast pushes a tick event to every subscriber of its product.
func (h *Hub) Broadcast(ev model.TickEvent) {
	msg := TickMessage{
		Type:      "tick",
		ProductID: ev.ProductID,
		Date:      ev.Record.Timestamp.Format(timeLayout),
		Value:     ev.Record.Price,
	}

	h.mu.RLock()
	clients := make([]ClientConn, 0, len(h.subscribers[ev.ProductID]))
	for client := range h.subscribers[ev.ProductID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.send(client, msg)
	}
}

// Subscribers reports how many clients follow the product.
func (h *Hub) Subscribers(productID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[productID])
}

func (h *Hub) send(client ClientConn, v any) {
	if err := client.SendJSON(v); err != nil {
		h.logger.Debug("Dropping unresponsive client", "error", err)
		h.Unregister(client)
	}
}
