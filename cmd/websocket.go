package main

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ospreyBack/internal/models"
)

const (
	readLimit     = 1 << 10
	readDeadline  = 60 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
	outboxSize    = 32
)

type hubClient struct {
	id   string
	conn *websocket.Conn
	send chan models.Event
}

// EventHub streams domain events to connected admin dashboards. All access to
// clients happens on the Run goroutine.
type EventHub struct {
	clients    map[string]*hubClient
	broadcast  chan models.Event
	register   chan *hubClient
	unregister chan *hubClient
	done       chan struct{}
	log        *zap.Logger
}

func NewEventHub(log *zap.Logger) *EventHub {
	return &EventHub{
		clients:    make(map[string]*hubClient),
		broadcast:  make(chan models.Event, 64),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *EventHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			return

		case c := <-h.register:
			h.clients[c.id] = c
			h.log.Debug("ws register", zap.String("client", c.id))

		case c := <-h.unregister:
			if cur, ok := h.clients[c.id]; ok && cur == c {
				close(c.send)
				delete(h.clients, c.id)
				h.log.Debug("ws unregister", zap.String("client", c.id))
			}

		case ev := <-h.broadcast:
			for id, c := range h.clients {
				select {
				case c.send <- ev:
				default:
					h.log.Warn("ws client too slow, dropping", zap.String("client", id))
					close(c.send)
					delete(h.clients, id)
				}
			}
		}
	}
}

// Broadcast never blocks the publisher. Events are dropped when the hub is
// saturated.
func (h *EventHub) Broadcast(ev models.Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("ws broadcast buffer full", zap.String("topic", ev.Topic))
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades an authenticated admin request and streams events until
// the socket closes.
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	c := &hubClient{id: uuid.NewString(), conn: conn, send: make(chan models.Event, outboxSize)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = writeClose(conn, websocket.CloseGoingAway, "server closing")
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump only services control frames; dashboards never send data.
func (h *EventHub) readPump(c *hubClient) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventHub) writePump(c *hubClient) {
	t := time.NewTicker(pingInterval)
	defer func() {
		t.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				_ = writeClose(c.conn, websocket.CloseGoingAway, "server closing")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(ev); err != nil {
				h.log.Debug("ws write error", zap.String("client", c.id), zap.Error(err))
				return
			}
		case <-t.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
