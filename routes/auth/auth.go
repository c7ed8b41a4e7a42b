package auth

import (
	"github.com/gin-gonic/gin"

	"cofounder/controllers"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
)

// RegisterPublic registers public auth routes: /signup, /token
func RegisterPublic(g *gin.RouterGroup, identity *services.IdentityService, log *logger.Logger) {
	g.POST("/signup", controllers.SignUp(identity, log))
	g.POST("/token", controllers.SignIn(identity, log))
}

// RegisterProtected registers protected auth routes (logout, current user)
func RegisterProtected(g *gin.RouterGroup, identity *services.IdentityService, log *logger.Logger) {
	g.POST("/logout", controllers.Logout(identity, log))
	g.GET("/user", controllers.CurrentUser(identity, log))
}
