package profile

import (
	"github.com/gin-gonic/gin"

	"cofounder/controllers"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
)

// Register registers protected profile routes on supplied router group
// expects the group to already have AuthMiddleware applied
func Register(g *gin.RouterGroup, profiles store.ProfileRepo, log *logger.Logger) {
	g.GET("/profile", controllers.GetProfile(profiles, log))
	g.PUT("/profile", controllers.PutProfile(profiles, log))
}
