package uploads

import (
	"github.com/gin-gonic/gin"

	"cofounder/controllers"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
)

// RegisterPublic serves stored objects. Public URLs are fetched without credentials,
// by browsers and by the completion service alike.
func RegisterPublic(g *gin.RouterGroup, bucket string, blobs services.BlobStore, log *logger.Logger) {
	g.GET("/object/public/:bucket/*key", controllers.ServeObject(bucket, blobs, log))
}

// Register registers the upload route; expects AuthMiddleware on the group.
func Register(g *gin.RouterGroup, bucket string, uploads *services.UploadService, log *logger.Logger) {
	g.PUT("/object/:bucket/*key", controllers.UploadObject(bucket, uploads, log))
}
