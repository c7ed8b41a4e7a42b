package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cofounder/middleware"
	"cofounder/models"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
)

// SignUp creates an account and signs it in right away.
func SignUp(identity *services.IdentityService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body api.Credentials
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		user, err := identity.SignUp(c.Request.Context(), body.Email, body.Password)
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		case err != nil:
			log.Error("Sign up failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
			return
		}
		respondSession(c, identity, user, http.StatusCreated, log)
	}
}

// SignIn exchanges email and password for a session token.
func SignIn(identity *services.IdentityService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body api.Credentials
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if body.Email == "" || body.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}
		user, err := identity.SignIn(c.Request.Context(), body.Email, body.Password)
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login credentials"})
			return
		}
		if err != nil {
			log.Error("Sign in failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
			return
		}
		respondSession(c, identity, user, http.StatusOK, log)
	}
}

func respondSession(c *gin.Context, identity *services.IdentityService, user *models.User, status int, log *logger.Logger) {
	token, err := identity.Issue(user.ID)
	if err != nil {
		log.Error("Token issue failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}
	c.JSON(status, api.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(identity.TTL().Seconds()),
		User:        toAPIUser(user),
	})
}

// Logout revokes the token used for this request.
func Logout(identity *services.IdentityService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.CurrentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := identity.SignOut(c.Request.Context(), claims); err != nil {
			log.Error("Sign out failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign out"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
	}
}

// CurrentUser returns the signed in user.
func CurrentUser(identity *services.IdentityService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := identity.User(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			log.Warn("Current user lookup failed", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.JSON(http.StatusOK, toAPIUser(user))
	}
}
