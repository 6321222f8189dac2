// Package events pushes store updates to connected clients over
// WebSocket, replacing the in-page event bus the storefront UI used to
// keep wishlist and cart views in sync.
package events

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playvault/server/logger"
)

// Event types published by the services.
const (
	TypeWishlistUpdated   = "wishlist_updated"
	TypeCartUpdated       = "cart_updated"
	TypePurchaseCompleted = "purchase_completed"
	TypeCommentAdded      = "comment_added"
)

// Event is one JSON message on the feed.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Publisher is what the services see. Hub implements it.
type Publisher interface {
	Publish(evt Event)
}

type conn struct {
	ws        *websocket.Conn
	sendMutex sync.Mutex
}

func (c *conn) send(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks subscribed connections and fans events out to them.
// Delivery is fire-and-forget: a failed write drops the client.
type Hub struct {
	conns    map[string]*conn
	mutex    sync.RWMutex
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
}

// Handle upgrades the request and keeps the connection subscribed until
// it closes. Inbound messages are discarded.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade event feed connection: %v", err)
		return
	}

	id := uuid.New().String()
	c := &conn{ws: ws}

	h.mutex.Lock()
	h.conns[id] = c
	h.mutex.Unlock()
	logger.Log.Infof("Event feed subscriber connected from %s, id: %s", ws.RemoteAddr(), id)

	defer func() {
		h.mutex.Lock()
		delete(h.conns, id)
		h.mutex.Unlock()
		ws.Close()
		logger.Log.Infof("Event feed subscriber disconnected, id: %s", id)
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish broadcasts the event to every subscriber.
func (h *Hub) Publish(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		logger.Log.Errorf("Failed to encode event %s: %v", evt.Type, err)
		return
	}

	h.mutex.RLock()
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mutex.RUnlock()

	for _, c := range conns {
		if err := c.send(data); err != nil {
			// 发送失败，由读循环负责清理
			continue
		}
	}
}

// SubscriberCount reports the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.conns)
}
