package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/crosslink-crm/crosslink/internal/api/middleware"
)

// SetupRoutes registers the REST routes on the router. The health probe
// stays unauthenticated; everything else requires an API key.
func SetupRoutes(router *gin.Engine, handler *Handler, auth middleware.AuthConfig) {
	router.GET("/healthz", handler.Healthz)

	v1 := router.Group("/v1", middleware.Auth(auth))
	{
		v1.POST("/webhooks/:tenant/:side", handler.HandleWebhook)
		v1.POST("/webhooks/:tenant/:side/batch", handler.HandleWebhookBatch)
		v1.POST("/tenants/:tenant/full-sync", handler.TriggerFullSync)
		v1.POST("/tenants/:tenant/rules/validate", handler.ValidateRules)
	}
}
