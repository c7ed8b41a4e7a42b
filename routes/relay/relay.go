package relay

import (
	"github.com/gin-gonic/gin"

	"cofounder/controllers"
	"cofounder/middleware"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
)

// Register registers the chat relay under /functions/v1. It authorizes requests itself.
func Register(g *gin.RouterGroup, identity middleware.TokenVerifier, relay *services.Relay, log *logger.Logger) {
	g.OPTIONS("/chat", controllers.RelayPreflight())
	g.POST("/chat", controllers.RelayChat(identity, relay, log))
}
