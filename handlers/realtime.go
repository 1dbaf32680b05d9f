package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"learnhub/middleware"
	"learnhub/models"
	"learnhub/services/realtime"
	"learnhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Close code sent when a connection fails authentication.
	closeUnauthorized = 4001

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set custom headers on WebSocket handshakes; CORS for the
	// REST surface is already wide open, so origin checking is a no-op here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// frame is the JSON shape of every message exchanged with a client session.
type frame struct {
	Type      string               `json:"type"`
	Data      *models.Notification `json:"data,omitempty"`
	Message   string               `json:"message,omitempty"`
	UserID    int64                `json:"user_id,omitempty"`
	Channel   string               `json:"channel,omitempty"`
	Timestamp any                  `json:"timestamp,omitempty"`
}

// RealtimeHandler bridges per-user hub channels onto WebSocket sessions.
type RealtimeHandler struct {
	Hub *realtime.Hub
}

// NewRealtimeHandler creates the gateway handler for the given hub.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub}
}

// ServeWS handles GET /ws/notifications. The connection authenticates itself
// during the handshake: an invalid principal is closed with a distinguishing
// code and never joins its channel.
func (h *RealtimeHandler) ServeWS(c *gin.Context) {
	logger := utils.GetLogger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("realtime: upgrade failed", zap.Error(err))
		return
	}

	token := middleware.BearerToken(c)
	userID, _, err := utils.ExtractIdentityFromToken(token)
	if err != nil || userID == 0 {
		msg := websocket.FormatCloseMessage(closeUnauthorized, "authentication required")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		return
	}

	session := &clientSession{
		id:       uuid.NewString(),
		userID:   userID,
		conn:     conn,
		outbound: make(chan frame, 16),
	}

	deliveries, unsubscribe := h.Hub.Subscribe(userID)
	logger.Info("realtime: session subscribed",
		zap.String("sessionID", session.id), zap.Int64("userID", userID))

	session.outbound <- frame{
		Type:    "connected",
		Message: "Connected to the notification stream",
		UserID:  userID,
		Channel: fmt.Sprintf("notifications:%d", userID),
	}

	go session.writePump(deliveries)
	session.readPump(func() {
		unsubscribe()
		logger.Info("realtime: session closed",
			zap.String("sessionID", session.id), zap.Int64("userID", userID))
	})
}

// clientSession is one live WebSocket connection of one recipient. Multiple
// sessions per user are independent members of the same channel.
type clientSession struct {
	id       string
	userID   int64
	conn     *websocket.Conn
	outbound chan frame
}

// readPump consumes client frames until the connection dies. Liveness probes
// are answered, malformed input is answered with an error frame, and the
// connection stays open either way.
func (s *clientSession) readPump(onClose func()) {
	defer func() {
		onClose()
		close(s.outbound)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(4096)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var in struct {
			Type      string `json:"type"`
			Timestamp any    `json:"timestamp"`
		}
		if err := json.Unmarshal(raw, &in); err != nil {
			s.send(frame{Type: "error", Message: "invalid message format"})
			continue
		}

		switch in.Type {
		case "ping":
			s.send(frame{Type: "pong", Timestamp: in.Timestamp})
		default:
			// Unknown-but-parseable frames are ignored.
		}
	}
}

// writePump owns all writes to the connection: hub deliveries, reply frames
// and protocol-level pings that reap stale peers.
func (s *clientSession) writePump(deliveries <-chan *models.Notification) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case n, ok := <-deliveries:
			if !ok {
				return
			}
			if !s.write(frame{Type: "notification", Data: n}) {
				return
			}
		case f, ok := <-s.outbound:
			if !ok {
				return
			}
			if !s.write(f) {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// send queues a frame without ever blocking the read loop.
func (s *clientSession) send(f frame) {
	select {
	case s.outbound <- f:
	default:
	}
}

func (s *clientSession) write(f frame) bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(f) == nil
}
