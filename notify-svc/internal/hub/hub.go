// Package hub fans order status updates out to websocket subscribers.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"savory-orders/internal/auth"
	"savory-orders/internal/logger"
	"savory-orders/internal/notify"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Subscriber is one websocket connection watching one order.
type Subscriber struct {
	OrderID   string
	Principal auth.Principal
	conn      *websocket.Conn
	send      chan []byte
}

// allowed reports whether the subscriber may see updates for the order
// owned by userID.
func (s *Subscriber) allowed(userID string) bool {
	return s.Principal.IsAdmin() || s.Principal.UserID == userID
}

type Hub struct {
	clients    map[string]map[*Subscriber]bool
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan notify.StatusUpdate
	done       chan struct{}
	log        *logger.Logger
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Subscriber]bool),
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan notify.StatusUpdate),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the subscriber map until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, subs := range h.clients {
				for sub := range subs {
					close(sub.send)
				}
			}
			h.clients = map[string]map[*Subscriber]bool{}
			return nil

		case sub := <-h.register:
			if h.clients[sub.OrderID] == nil {
				h.clients[sub.OrderID] = make(map[*Subscriber]bool)
			}
			h.clients[sub.OrderID][sub] = true

		case sub := <-h.unregister:
			h.remove(sub)

		case update := <-h.broadcast:
			payload, err := json.Marshal(update)
			if err != nil {
				h.log.Error(ctx, "encode_update", "status update not encodable", err)
				continue
			}
			for sub := range h.clients[update.OrderID] {
				if !sub.allowed(update.UserID) {
					continue
				}
				select {
				case sub.send <- payload:
				default:
					h.log.Warn(ctx, "slow_subscriber", "dropping websocket client",
						slog.String("order_id", update.OrderID))
					h.remove(sub)
				}
			}
		}
	}
}

func (h *Hub) remove(sub *Subscriber) {
	subs, ok := h.clients[sub.OrderID]
	if !ok || !subs[sub] {
		return
	}
	delete(subs, sub)
	close(sub.send)
	if len(subs) == 0 {
		delete(h.clients, sub.OrderID)
	}
}

// Deliver queues an update for every subscriber of its order. It satisfies
// notify.Handler.
func (h *Hub) Deliver(ctx context.Context, update notify.StatusUpdate) error {
	select {
	case h.broadcast <- update:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return errors.New("hub stopped")
	}
}

// Serve registers conn and pumps messages until the client goes away.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, orderID string, principal auth.Principal) {
	sub := &Subscriber{
		OrderID:   orderID,
		Principal: principal,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(sub)
	h.readPump(ctx, sub)
}

// readPump only services control frames; clients never send data.
func (h *Hub) readPump(ctx context.Context, sub *Subscriber) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug(ctx, "ws_read", err.Error(), slog.String("order_id", sub.OrderID))
			}
			return
		}
	}
}

func (h *Hub) writePump(sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
