package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"cofounder/middleware"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/metrics"
	"cofounder/pkg/services"
)

const (
	wsReadLimit    = 1 << 20 // 1MB
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// the relay accepts any origin, same as its HTTP endpoint
		return true
	},
}

// ChatWS is the websocket transport of the relay. Client protocol (JSON frames):
//
//	-> {type: "chat", messages: [{role, content, images?}], conversationId?}
//	<- {type: "reply", message, conversationId}
//	<- {type: "error", error}
//
// One request and one reply per connection; the reply is sent complete, never in pieces.
func ChatWS(identity middleware.TokenVerifier, relay *services.Relay, log *logger.Logger) gin.HandlerFunc {
	log = log.With("service", "RelayWS")
	return func(c *gin.Context) {
		// browsers cannot set headers on websocket requests, so ?token= is accepted too
		auth := c.GetHeader("Authorization")
		if tok := strings.TrimSpace(c.Query("token")); auth == "" && tok != "" {
			auth = "Bearer " + tok
		}
		if auth == "" {
			metrics.RelayRequests.WithLabelValues("ws", metrics.OutcomeUnauthorized).Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization header"})
			return
		}
		claims, err := middleware.Authenticate(c.Request.Context(), identity, auth)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				metrics.RelayRequests.WithLabelValues("ws", metrics.OutcomeUnauthorized).Inc()
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			log.Error("Token verification failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		// Upgrade to websocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("Upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		outcome := serveChatFrame(c.Request.Context(), conn, relay, claims.UserID, log)
		metrics.RelayRequests.WithLabelValues("ws", outcome).Inc()
	}
}

func serveChatFrame(ctx context.Context, conn *websocket.Conn, relay *services.Relay, userID string, log *logger.Logger) string {
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

	var in api.Frame
	if err := conn.ReadJSON(&in); err != nil {
		log.Debug("Read frame failed", "error", err)
		writeFrame(conn, api.Frame{Type: api.FrameError, Error: "Messages array required"})
		return metrics.OutcomeInvalid
	}
	if in.Type != api.FrameChat || in.Messages == nil || !validRoles(in.Messages) {
		writeFrame(conn, api.Frame{Type: api.FrameError, Error: "Messages array required"})
		return metrics.OutcomeInvalid
	}

	reply, err := relay.Reply(ctx, userID, in.Messages)
	if err != nil {
		if errors.Is(err, services.ErrUpstream) {
			log.Error("AI service error", "user_id", userID, "error", err)
			writeFrame(conn, api.Frame{Type: api.FrameError, Error: "AI service error"})
			return metrics.OutcomeUpstream
		}
		log.Error("Relay failed", "user_id", userID, "error", err)
		writeFrame(conn, api.Frame{Type: api.FrameError, Error: "Internal server error"})
		return metrics.OutcomeInternal
	}
	writeFrame(conn, api.Frame{Type: api.FrameReply, Message: reply, ConversationID: in.ConversationID})
	return metrics.OutcomeOK
}

func writeFrame(conn *websocket.Conn, f api.Frame) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteJSON(f)
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
