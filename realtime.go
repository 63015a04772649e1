package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	livePingInterval = 25 * time.Second
	liveWriteTimeout = 10 * time.Second
)

// liveEvent is pushed to a user's websocket subscribers whenever their profile
// or a daily entry changes. Clients replace their snapshot with the payload.
type liveEvent struct {
	Kind    string         `json:"kind"`
	Date    string         `json:"date,omitempty"`
	Entry   *dailyEntry    `json:"entry,omitempty"`
	Profile *profile       `json:"profile,omitempty"`
	Summary *weeklySummary `json:"summary,omitempty"`
}

// liveClient is one websocket subscription. gorilla connections allow a single
// concurrent writer, so data frames go through mu.
type liveClient struct {
	userID string
	conn   *websocket.Conn
	mu     sync.Mutex
}

func (lc *liveClient) write(msg []byte) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return lc.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub fans change events out to the websocket clients of each user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*liveClient]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]map[*liveClient]struct{}), log: log}
}

func (h *Hub) register(c *liveClient) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*liveClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *liveClient) {
	h.mu.Lock()
	if set := h.clients[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// subscribers returns how many live clients userID has.
func (h *Hub) subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish sends ev to every client of userID. Safe on a nil Hub. Clients
// whose write fails are dropped.
func (h *Hub) Publish(userID string, ev liveEvent) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal live event failed", zap.String("kind", ev.Kind), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*liveClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			h.log.Debug("dropping live client", zap.String("user_id", userID), zap.Error(err))
			h.unregister(c)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// live upgrades to a websocket and streams the user's change events until the
// client disconnects. GET /api/live.
func (h *Handler) live(c *gin.Context) {
	userID := c.GetString("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &liveClient{userID: userID, conn: conn}
	h.hub.register(client)

	done := make(chan struct{})
	defer close(done)

	// Keep connections alive through proxies that drop idle sockets.
	go func() {
		t := time.NewTicker(livePingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	// Read loop ends on client close/error.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.unregister(client)
			return
		}
	}
}
