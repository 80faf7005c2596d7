package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

// client is one websocket subscriber to a document's events
type client struct {
	documentID string
	conn       *websocket.Conn
	send       chan []byte
}

// Hub fans document events out to websocket subscribers, one room per
// document. It implements Publisher. Slow clients are dropped rather than
// allowed to back up publishers.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewHub creates a websocket event hub
func NewHub(checkOrigin func(*http.Request) bool, logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
		rooms:  make(map[string]map[*client]struct{}),
	}
}

// Publish implements Publisher. Marshals once and sends to every subscriber
// of the document's room without blocking; full buffers drop the event.
func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("event marshal failed", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[event.DocumentID] {
		select {
		case c.send <- data:
		default:
			// drop on slow client
		}
	}
}

// Subscribe upgrades the request to a websocket and streams the document's
// events until the client disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, documentID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		documentID: documentID,
		conn:       conn,
		send:       make(chan []byte, clientSendSize),
	}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// SubscriberCount reports the number of clients in a document's room
func (h *Hub) SubscriberCount(documentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[documentID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.documentID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.documentID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.documentID]
	if !ok {
		return
	}
	if _, ok := room[c]; ok {
		delete(room, c)
		close(c.send)
	}
	if len(room) == 0 {
		delete(h.rooms, c.documentID)
	}
}

// readPump drains inbound frames so the connection's ping/pong machinery
// works; subscribers never send application messages.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("subscriber read failed", "document_id", c.documentID, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
