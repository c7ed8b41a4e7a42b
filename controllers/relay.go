package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cofounder/middleware"
	"cofounder/models"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/metrics"
	"cofounder/pkg/services"
)

// relayBody keeps messages raw so a non-array value can be told apart from a missing one,
// and conversationId raw so it is echoed back untouched.
type relayBody struct {
	Messages       json.RawMessage `json:"messages"`
	ConversationID json.RawMessage `json:"conversationId"`
}

// RelayChat authorizes the caller, forwards the transcript to the completion service and
// answers {message, conversationId}. It never writes to the database.
func RelayChat(identity middleware.TokenVerifier, relay *services.Relay, log *logger.Logger) gin.HandlerFunc {
	log = log.With("service", "RelayHTTP")
	return func(c *gin.Context) {
		outcome := metrics.OutcomeInternal
		defer func() { metrics.RelayRequests.WithLabelValues("http", outcome).Inc() }()

		auth := c.GetHeader("Authorization")
		if auth == "" {
			outcome = metrics.OutcomeUnauthorized
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "No authorization header"})
			return
		}
		claims, err := middleware.Authenticate(c.Request.Context(), identity, auth)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				outcome = metrics.OutcomeUnauthorized
				c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
				return
			}
			log.Error("Token verification failed", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
			return
		}

		var body relayBody
		turns, ok := decodeTurns(c, &body)
		if !ok {
			outcome = metrics.OutcomeInvalid
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Messages array required"})
			return
		}

		reply, err := relay.Reply(c.Request.Context(), claims.UserID, turns)
		if err != nil {
			if errors.Is(err, services.ErrUpstream) {
				outcome = metrics.OutcomeUpstream
				log.Error("AI service error", "user_id", claims.UserID, "error", err)
				c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "AI service error"})
				return
			}
			log.Error("Relay failed", "user_id", claims.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
			return
		}

		outcome = metrics.OutcomeOK
		conversationID := body.ConversationID
		if len(conversationID) == 0 {
			conversationID = json.RawMessage("null")
		}
		c.JSON(http.StatusOK, gin.H{"message": reply, "conversationId": conversationID})
	}
}

// decodeTurns reports false when the body is not JSON, messages is absent or not an array,
// or a turn has a role other than user or assistant.
func decodeTurns(c *gin.Context, body *relayBody) ([]api.Turn, bool) {
	if err := json.NewDecoder(c.Request.Body).Decode(body); err != nil {
		return nil, false
	}
	raw := bytes.TrimSpace(body.Messages)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var turns []api.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, false
	}
	return turns, validRoles(turns)
}

// validRoles keeps callers from injecting system or tool turns ahead of the system prompt.
func validRoles(turns []api.Turn) bool {
	for _, t := range turns {
		if t.Role != models.RoleUser && t.Role != models.RoleAssistant {
			return false
		}
	}
	return true
}

// RelayPreflight answers OPTIONS on the relay; the CORS headers come from middleware.RelayCORS.
func RelayPreflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
	}
}
