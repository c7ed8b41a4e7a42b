package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cofounder/middleware"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
	"cofounder/pkg/store"

	authRoutes "cofounder/routes/auth"
	convRoutes "cofounder/routes/conversation"
	profileRoutes "cofounder/routes/profile"
	relayRoutes "cofounder/routes/relay"
	uploadsRoutes "cofounder/routes/uploads"
	websocketRoutes "cofounder/routes/websocket"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	AnonKey       string
	Bucket        string
	Identity      *services.IdentityService
	Relay         *services.Relay
	Uploads       *services.UploadService
	Blobs         services.BlobStore
	Conversations store.ConversationRepo
	Messages      store.MessageRepo
	Profiles      store.ProfileRepo
	Log           *logger.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "co-founder chat backend running"})
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// object URLs are handed to browsers and the completion service, no key required
	uploadsRoutes.RegisterPublic(r.Group("/storage/v1"), d.Bucket, d.Blobs, d.Log)

	keyed := r.Group("/")
	keyed.Use(middleware.APIKey(d.AnonKey))

	relayRoutes.Register(keyed.Group("/functions/v1"), d.Identity, d.Relay, d.Log)
	websocketRoutes.Register(keyed, d.Identity, d.Relay, d.Log)

	auth := keyed.Group("/auth/v1")
	authRoutes.RegisterPublic(auth, d.Identity, d.Log)

	requireUser := middleware.AuthMiddleware(d.Identity, d.Log)

	authProtected := auth.Group("/")
	authProtected.Use(requireUser)
	authRoutes.RegisterProtected(authProtected, d.Identity, d.Log)

	rest := keyed.Group("/rest/v1")
	rest.Use(requireUser)
	profileRoutes.Register(rest, d.Profiles, d.Log)
	convRoutes.Register(rest, d.Conversations, d.Messages, d.Log)

	storage := keyed.Group("/storage/v1")
	storage.Use(requireUser)
	uploadsRoutes.Register(storage, d.Bucket, d.Uploads, d.Log)
}
