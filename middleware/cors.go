package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RelayAllowHeaders is the exact header list browsers are told they may send to the relay.
const RelayAllowHeaders = "authorization, x-client-info, apikey, content-type"

// RelayCORS allows any origin on the relay endpoint, including requests that carry no
// Origin header, and answers preflight requests itself.
func RelayCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", RelayAllowHeaders)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// APICORS is the CORS policy of the REST, auth and storage routes.
func APICORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Client-Info", "Apikey"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// CORS picks the relay policy for /functions/ paths and the API policy for everything else.
// It runs on the engine so unmatched preflight requests are answered too.
func CORS(origins []string) gin.HandlerFunc {
	relay := RelayCORS()
	api := APICORS(origins)
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			relay(c)
			return
		}
		api(c)
	}
}
