package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection watching a batch.
type Client struct {
	ID      string
	BatchID uuid.UUID
	UserID  uuid.UUID
	Role    string
	hub     *Hub
	conn    *websocket.Conn
	send    chan WSMessage
	logger  *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop. Clients
// connect with ?batch_id=...&token=... and then receive attendance and phase
// events for that batch as they happen.
func ServeWs(hub *Hub, logger *zap.Logger, jwtValidate func(token string) (userID, role string, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		batchIDStr := c.Query("batch_id")
		token := c.Query("token")
		if batchIDStr == "" || token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch_id and token required"})
			return
		}
		batchID, err := uuid.Parse(batchIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch_id"})
			return
		}
		userIDStr, role, err := jwtValidate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		userID, _ := uuid.Parse(userIDStr)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:      uuid.New().String(),
			BatchID: batchID,
			UserID:  userID,
			Role:    role,
			hub:     hub,
			conn:    conn,
			send:    make(chan WSMessage, 256),
			logger:  logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "join":
			c.hub.PublishToBatchOnly(c.BatchID, "watcher_count", map[string]int{
				"count": c.hub.WatcherCount(c.BatchID),
			})
		default:
			// server-push only; client messages besides join are ignored
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
