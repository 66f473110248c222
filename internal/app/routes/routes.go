package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/canvasmirror/internal/app/controllers"
	"github.com/yigit/canvasmirror/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, statusController *controllers.StatusController) {
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	// Health check endpoint
	router.GET("/healthz", statusController.Health)

	// API version group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", statusController.Health)
		v1.GET("/status", statusController.Status)
	}
}
