package websocket

import (
	"github.com/gin-gonic/gin"

	"cofounder/controllers"
	"cofounder/middleware"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
)

func Register(g *gin.RouterGroup, identity middleware.TokenVerifier, relay *services.Relay, log *logger.Logger) {
	g.GET("/ws/chat", controllers.ChatWS(identity, relay, log))
}
