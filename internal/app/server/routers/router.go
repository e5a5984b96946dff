package routers

import (
	"github.com/gin-gonic/gin"

	"fzscan/internal/app/server/handlers/progress"
	"fzscan/internal/app/server/handlers/scan"
	"fzscan/internal/app/server/middlewares"
	"fzscan/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	scanHandler *scan.ScanHandler,
	progressHandler *progress.ProgressHandler,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler(log))
	r.Use(middlewares.Operator())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "fzscan",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		scans := v1.Group("/scans")
		{
			scans.POST("", scanHandler.Execute)
			scans.POST("/undo", scanHandler.Undo)
			scans.POST("/:id/rescan", scanHandler.Rescan)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("/:id/progress", progressHandler.Get)
			orders.GET("/:id/scans", scanHandler.History)
		}
	}

	return r
}
