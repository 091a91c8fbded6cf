package main

import (
	"github.com/gin-gonic/gin"

	"nexacred.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	walletAuthHandler *handlers.WalletAuthHandler
	analyzerHandler   *handlers.AnalyzerHandler
	authMiddleware    gin.HandlerFunc
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		// User routes (public except /me)
		users := api.Group("/users")
		{
			users.POST("/register", d.authHandler.Register)
			users.POST("/login", d.authHandler.Login)
			users.POST("/wallet-auth", d.walletAuthHandler.Authenticate)
			users.POST("/wallet-auth/challenge", d.walletAuthHandler.Challenge)
			users.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		}

		// Analyzer routes (protected)
		analyzer := api.Group("/analyzer")
		analyzer.Use(d.authMiddleware)
		{
			analyzer.POST("/analyze/:address", d.analyzerHandler.Analyze)
			analyzer.GET("/transactions/:address", d.analyzerHandler.GetTransactions)
		}
	}
}
