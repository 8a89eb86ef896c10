package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes, read only
	v1 := router.Group("/api/v1")
	{
		v1.GET("/chains", handler.ListChains)
		v1.GET("/chains/:chain_id", handler.GetChain)
		v1.GET("/chains/:chain_id/addresses/:address/balances", handler.ListBalances)
		v1.GET("/chains/:chain_id/tokens", handler.ListTokens)
		v1.GET("/chains/:chain_id/tokens/:address", handler.GetToken)
		v1.GET("/chains/:chain_id/transfers", handler.ListTransfers)
	}
}
