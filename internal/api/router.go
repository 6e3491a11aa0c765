// Package api exposes the runner over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"stratlab/internal/api/handlers"
	"stratlab/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the handlers and middleware onto a gin engine.
func NewRouter(r handlers.Runner, logger *slog.Logger, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler())

	backtestHandler := handlers.NewBacktestHandler(r)
	strategyHandler := handlers.NewStrategyHandler()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/backtest", backtestHandler.RunBacktest)
		api.GET("/backtests", backtestHandler.ListBacktests)
		api.GET("/strategies", strategyHandler.ListStrategies)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
