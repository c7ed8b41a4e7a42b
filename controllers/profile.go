package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cofounder/middleware"
	"cofounder/models"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
)

func GetProfile(profiles store.ProfileRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := profiles.Get(c.Request.Context(), nil, middleware.CurrentUserID(c))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		if err != nil {
			log.Error("Get profile failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}
		c.JSON(http.StatusOK, toAPIProfile(p))
	}
}

// PutProfile creates or replaces the caller's profile.
func PutProfile(profiles store.ProfileRepo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body api.Profile
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		stage := strings.TrimSpace(body.StartupStage)
		if !models.ValidStage(stage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "startup_stage must be one of " + strings.Join(models.StartupStages, ", "),
			})
			return
		}
		p := &models.Profile{
			UserID:       middleware.CurrentUserID(c),
			DisplayName:  strings.TrimSpace(body.DisplayName),
			CompanyName:  strings.TrimSpace(body.CompanyName),
			StartupStage: stage,
			Industry:     strings.TrimSpace(body.Industry),
			Goals:        strings.TrimSpace(body.Goals),
			Bio:          strings.TrimSpace(body.Bio),
		}
		if err := profiles.Upsert(c.Request.Context(), nil, p); err != nil {
			log.Error("Upsert profile failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, toAPIProfile(p))
	}
}
