// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trendpulse/internal/domain/report"
	"trendpulse/internal/logging"
)

// Subscriber delivers raw run events. The returned function unsubscribes.
type Subscriber interface {
	Subscribe(fn func(data []byte)) (func(), error)
}

// LatestSource provides the snapshot sent to new clients
type LatestSource interface {
	Latest() (*report.Result, bool)
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Messages buffered per client before events are dropped
	SendBuffer int
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
		SendBuffer:     64,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origins are restricted by the CORS layer
		return true
	},
}

// feedClient is one connected websocket
type feedClient struct {
	conn   *websocket.Conn
	send   chan []byte
	config WebSocketConfig
	log    *zap.Logger

	mu     sync.Mutex
	closed bool
	once   sync.Once
	unsub  func()
}

// TrendFeedHandler streams run events to websocket clients. Each client
// first receives a snapshot of the latest top trend.
func TrendFeedHandler(events Subscriber, latest LatestSource, config WebSocketConfig, log *zap.Logger) http.HandlerFunc {
	log = logging.OrNop(log).With(zap.String("component", "ws"))

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &feedClient{
			conn:   conn,
			send:   make(chan []byte, config.SendBuffer),
			config: config,
			log:    log,
		}

		snapshot := map[string]interface{}{
			"type": "welcome",
			"time": time.Now(),
		}
		if result, ok := latest.Latest(); ok {
			snapshot["run_id"] = result.RunID
			snapshot["top"] = result.Top
		}
		welcome, _ := json.Marshal(snapshot)
		client.enqueue(welcome)

		unsub, err := events.Subscribe(client.enqueue)
		if err != nil {
			log.Error("Failed to subscribe to events", zap.Error(err))
			client.close()
			return
		}
		client.mu.Lock()
		client.unsub = unsub
		client.mu.Unlock()

		go client.writePump()
		go client.readPump()

		log.Debug("WebSocket client connected", zap.String("remote", r.RemoteAddr))
	}
}

// enqueue queues data without blocking. Slow clients lose events.
func (c *feedClient) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("Dropping event for slow client")
	}
}

// readPump discards client messages and keeps the read deadline fresh
func (c *feedClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("WebSocket error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps queued events to the connection
func (c *feedClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close unsubscribes and tears the connection down once
func (c *feedClient) close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		unsub := c.unsub
		close(c.send)
		c.mu.Unlock()

		if unsub != nil {
			unsub()
		}
		c.conn.Close()
	})
}
