package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 16
)

// Run event types
const (
	EventRunStarted   = "run_started"
	EventRunCompleted = "run_completed"
)

// RunEvent is pushed to dashboard clients
type RunEvent struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Tickers    []string  `json:"tickers,omitempty"`
	Scored     int       `json:"scored,omitempty"`
	Excluded   int       `json:"excluded,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Cached     bool      `json:"cached,omitempty"`
	At         time.Time `json:"at"`
}

// Hub broadcasts pipeline run events over websockets.
// It implements brain.Observer.
// ⭐ SSOT: 실행 이벤트 브로드캐스트는 여기서만
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 대시보드는 별도 origin에서 접속
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*wsClient]struct{}),
	}
}

// RunStarted implements brain.Observer
func (h *Hub) RunStarted(runID string, tickers []string) {
	h.broadcast(RunEvent{
		Type:    EventRunStarted,
		RunID:   runID,
		Tickers: tickers,
		At:      time.Now(),
	})
}

// RunCompleted implements brain.Observer
func (h *Hub) RunCompleted(result *contracts.RunResult) {
	ev := RunEvent{
		Type:       EventRunCompleted,
		RunID:      result.RunID,
		DurationMs: result.Duration,
		Cached:     result.Cached,
		At:         time.Now(),
	}
	if result.Table != nil {
		ev.Scored = result.Table.Len()
		ev.Excluded = len(result.Table.Excluded)
	}
	h.broadcast(ev)
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events until the client leaves
// GET /ws/runs
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("remote", r.RemoteAddr).Debug("WebSocket client connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) broadcast(ev RunEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode run event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// 느린 클라이언트는 끊음
			h.dropLocked(c)
		}
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readLoop discards client messages and detects disconnects
func (h *Hub) readLoop(c *wsClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
