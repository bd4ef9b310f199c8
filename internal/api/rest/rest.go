package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-registry/internal/api/middleware"
)

// SetupRoutes configures all REST API routes. limit runs before every write route.
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, limit gin.HandlerFunc) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		entries := v1.Group("/registry/entries")
		{
			// Public reads
			entries.GET("", handler.ListEntries)
			entries.GET("/lookup", handler.LookupEntry)
			entries.GET("/:owner/:id", handler.GetEntry)

			// Paid registration and updates (payer resolved from the settlement gateway)
			entries.POST("", limit, handler.RegisterEntry)
			entries.PATCH("/:owner/:id", limit, handler.UpdateEntry)

			// Ownership proven by signature
			entries.DELETE("/:owner/:id", limit, handler.DeleteEntry)
			entries.POST("/:owner/:id/transfer", limit, handler.TransferEntry)
		}

		v1.POST("/registry/owners/:owner/entries", limit, handler.ListMyEntries)

		// Moderation and maintenance (JWT or API key)
		admin := v1.Group("/admin/registry", middleware.Auth(authCfg))
		{
			admin.POST("/entries/:owner/:id/verify", handler.VerifyEntry)
			admin.POST("/entries/:owner/:id/reject", handler.RejectEntry)
			admin.GET("/status/:status", handler.ListByStatus)
			admin.POST("/reconcile", handler.Reconcile)
		}
	}
}
