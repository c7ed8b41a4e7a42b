package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"cofounder/middleware"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
	"cofounder/pkg/store"
)

// UploadObject stores the raw request body at /:bucket/*key.
func UploadObject(bucket string, uploads *services.UploadService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("bucket") != bucket {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bucket not found"})
			return
		}
		key := strings.TrimPrefix(c.Param("key"), "/")
		body := http.MaxBytesReader(c.Writer, c.Request.Body, api.MaxUploadBytes+1)
		res, err := uploads.Upload(c.Request.Context(), middleware.CurrentUserID(c), key, body)
		var maxErr *http.MaxBytesError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, res)
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Uploads must go under your own folder"})
		case errors.Is(err, services.ErrTooLarge), errors.As(err, &maxErr):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 20MB limit"})
		case errors.Is(err, services.ErrUnsupportedType):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "File type not allowed"})
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid object key"})
		default:
			log.Error("Upload failed", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		}
	}
}

// ServeObject streams a stored object for its public URL.
func ServeObject(bucket string, blobs services.BlobStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("bucket") != bucket {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bucket not found"})
			return
		}
		key := strings.TrimPrefix(c.Param("key"), "/")
		if err := services.ValidateKey(key); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid object key"})
			return
		}
		rc, err := blobs.Open(c.Request.Context(), key)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Object not found"})
			return
		}
		if err != nil {
			log.Error("Open object failed", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read object"})
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, api.MaxUploadBytes+1))
		if err != nil {
			log.Error("Read object failed", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read object"})
			return
		}
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
	}
}
