package conversation

import (
	"github.com/gin-gonic/gin"

	"cofounder/controllers"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
)

// Register registers conversation and message routes (protected)
func Register(g *gin.RouterGroup, convs store.ConversationRepo, msgs store.MessageRepo, log *logger.Logger) {
	g.GET("/conversations", controllers.ListConversations(convs, log))
	g.POST("/conversations", controllers.CreateConversation(convs, log))
	g.PATCH("/conversations/:id", controllers.UpdateConversation(convs, log))
	g.DELETE("/conversations/:id", controllers.DeleteConversation(convs, log))
	g.GET("/conversations/:id/messages", controllers.ListMessages(convs, msgs, log))
	g.POST("/conversations/:id/messages", controllers.CreateMessage(convs, msgs, log))
}
