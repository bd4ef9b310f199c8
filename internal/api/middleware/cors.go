package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS configures CORS for browser wallets signing registry requests.
// extraHeaders are allowed in addition to the standard ones, e.g. the payer header.
func SetupCORS(extraHeaders ...string) gin.HandlerFunc {
	config := cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     append([]string{"Origin", "Content-Type", "Accept", "Authorization"}, extraHeaders...),
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	}
	return cors.New(config)
}
