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

const maxTitleLen = 200

// ListConversations returns the caller's conversations, most recently updated first.
func ListConversations(convs store.ConversationRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := convs.ListByUser(c.Request.Context(), nil, middleware.CurrentUserID(c))
		if err != nil {
			log.Error("List conversations failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
			return
		}
		out := make([]api.Conversation, 0, len(list))
		for _, conv := range list {
			out = append(out, toAPIConversation(conv))
		}
		c.JSON(http.StatusOK, out)
	}
}

func CreateConversation(convs store.ConversationRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body api.CreateConversationRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		title, ok := cleanTitle(body.Title)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		now := time.Now().UTC()
		conv := &models.Conversation{
			ID:        uuid.NewString(),
			UserID:    middleware.CurrentUserID(c),
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := convs.Create(c.Request.Context(), nil, conv); err != nil {
			log.Error("Create conversation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
			return
		}
		c.JSON(http.StatusCreated, toAPIConversation(conv))
	}
}

// UpdateConversation optionally retitles a conversation and always stamps updated_at.
func UpdateConversation(convs store.ConversationRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body api.UpdateConversationRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		var title *string
		if body.Title != nil {
			t, ok := cleanTitle(*body.Title)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Title must not be empty"})
				return
			}
			title = &t
		}
		conv, err := convs.Touch(c.Request.Context(), nil, middleware.CurrentUserID(c), c.Param("id"), title, time.Now().UTC())
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		if err != nil {
			log.Error("Update conversation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update conversation"})
			return
		}
		c.JSON(http.StatusOK, toAPIConversation(conv))
	}
}

// DeleteConversation removes the conversation and its messages.
func DeleteConversation(convs store.ConversationRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		err := convs.Delete(c.Request.Context(), nil, uid, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		if err != nil {
			log.Error("Delete conversation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conversation"})
			return
		}
		log.Info("Conversation deleted", "user_id", uid, "conversation_id", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
	}
}

func cleanTitle(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > maxTitleLen {
		s = string(r[:maxTitleLen])
	}
	return s, true
}
