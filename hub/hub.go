// Package hub pushes table and QR changes to connected dashboards over
// websockets.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventTableCreate = "table_create"
	EventTableUpdate = "table_update"
	EventTableDelete = "table_delete"
	EventQRCreate    = "qr_create"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	role         string
	restaurantID string
}

// Hub tracks connected dashboard clients by restaurant.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
	log     logrus.FieldLogger

	// OnCountChange, when set, is called with the new client count.
	OnCountChange func(int)
}

func New(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]client),
		log:     log.WithField("component", "hub"),
	}
}

// Register adds a connection. An empty restaurantID receives every event.
func (h *Hub) Register(conn *websocket.Conn, role, restaurantID string) {
	h.mutex.Lock()
	h.clients[conn] = client{role: role, restaurantID: restaurantID}
	n := len(h.clients)
	h.mutex.Unlock()

	h.log.WithFields(logrus.Fields{"role": role, "restaurant_id": restaurantID}).Debug("client registered")
	h.countChanged(n)
}

// Unregister drops the connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mutex.Unlock()

	conn.Close()
	if ok {
		h.countChanged(n)
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to the clients of restaurantID (and to clients
// registered without a restaurant). Clients whose write fails are dropped.
func (h *Hub) Broadcast(restaurantID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal broadcast message")
		return
	}

	h.mutex.Lock()
	var failed []*websocket.Conn
	sent := 0
	for conn, cl := range h.clients {
		if cl.restaurantID != "" && restaurantID != "" && cl.restaurantID != restaurantID {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithError(err).WithField("role", cl.role).Warn("dropping websocket client")
			failed = append(failed, conn)
			continue
		}
		sent++
	}
	h.mutex.Unlock()

	for _, conn := range failed {
		h.Unregister(conn)
	}
	h.log.WithFields(logrus.Fields{"event": msg.Event, "clients": sent}).Debug("broadcast")
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mutex.Unlock()

	for _, conn := range conns {
		h.Unregister(conn)
	}
}

func (h *Hub) countChanged(n int) {
	if h.OnCountChange != nil {
		h.OnCountChange(n)
	}
}
