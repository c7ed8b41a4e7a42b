package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cofounder/middleware"
	"cofounder/models"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
)

// ListMessages returns the transcript of a conversation, oldest first.
func ListMessages(convs store.ConversationRepo, msgs store.MessageRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		convID := c.Param("id")
		if _, err := convs.Get(ctx, nil, middleware.CurrentUserID(c), convID); err != nil {
			conversationLookupFailed(c, log, err)
			return
		}
		list, err := msgs.ListByConversation(ctx, nil, convID)
		if err != nil {
			log.Error("List messages failed", "conversation_id", convID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		out := make([]api.Message, 0, len(list))
		for _, m := range list {
			out = append(out, toAPIMessage(m))
		}
		c.JSON(http.StatusOK, out)
	}
}

// CreateMessage appends one message. Messages are never edited after creation.
func CreateMessage(convs store.ConversationRepo, msgs store.MessageRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		uid := middleware.CurrentUserID(c)
		convID := c.Param("id")

		var body api.CreateMessageRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if msg := validateMessage(&body); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		if _, err := convs.Get(ctx, nil, uid, convID); err != nil {
			conversationLookupFailed(c, log, err)
			return
		}

		m := &models.Message{
			ID:             body.ID,
			ConversationID: convID,
			UserID:         uid,
			Role:           body.Role,
			Content:        body.Content,
			Images:         body.Images,
			CreatedAt:      time.Now().UTC(),
		}
		err := msgs.Create(ctx, nil, m)
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Message already exists"})
			return
		}
		if err != nil {
			log.Error("Create message failed", "conversation_id", convID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
			return
		}
		c.JSON(http.StatusCreated, toAPIMessage(m))
	}
}

// validateMessage fills in a missing id and returns a user facing problem, or "".
func validateMessage(body *api.CreateMessageRequest) string {
	if body.ID == "" {
		body.ID = uuid.NewString()
	} else if _, err := uuid.Parse(body.ID); err != nil {
		return "Message id must be a UUID"
	}
	switch body.Role {
	case models.RoleUser:
	case models.RoleAssistant:
		if len(body.Images) > 0 {
			return "Only user messages carry attachments"
		}
	default:
		return "Role must be user or assistant"
	}
	if strings.TrimSpace(body.Content) == "" && len(body.Images) == 0 {
		return "Message content or attachment required"
	}
	return ""
}

func conversationLookupFailed(c *gin.Context, log *logger.Logger, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	log.Error("Conversation lookup failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
}
