package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/middleware"
	"github.com/walkandtalk/walktalk/internal/pkg/filestorage"
	"github.com/walkandtalk/walktalk/internal/realtime"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512KB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development, in production you should restrict this
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated requests into screen sessions
type Handler struct {
	repos   *repositories.Repositories
	hub     *realtime.Hub
	storage filestorage.FileStorage
	logger  zerolog.Logger
}

// NewHandler creates a gateway handler
func NewHandler(
	repos *repositories.Repositories,
	hub *realtime.Hub,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		repos:   repos,
		hub:     hub,
		storage: storage,
		logger:  logger,
	}
}

// Serve upgrades the connection and runs the session until the client leaves.
// The auth middleware must have run first; the session is bound to its user.
func (h *Handler) Serve(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	session := NewSession(h.repos, h.hub, h.storage, userID, h.logger)
	go h.writePump(conn, session)
	h.readPump(conn, session)
}

// readPump feeds inbound intent frames into the session until the connection
// drops, then tears the session down.
func (h *Handler) readPump(conn *websocket.Conn, session *Session) {
	defer func() {
		session.Close()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Info().Str("userID", session.userID).Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Str("userID", session.userID).Msg("Unexpected WebSocket close")
			} else {
				h.logger.Debug().Err(err).Str("userID", session.userID).Msg("WebSocket read error")
			}
			return
		}

		var frame dto.IntentFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			h.logger.Error().Err(err).Str("userID", session.userID).Msg("Failed to unmarshal intent frame")
			continue
		}

		if err := session.Dispatch(frame); err != nil {
			h.logger.Warn().
				Err(err).
				Str("userID", session.userID).
				Str("screen", frame.Screen).
				Str("intent", frame.Intent).
				Msg("Rejected intent frame")
		}
	}
}

// writePump drains the session's outbound frames to the connection
func (h *Handler) writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-session.Frames():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
