package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		raport := v1.Group("/raport")
		raport.POST("/upload", handler.UploadAndValidate)
		raport.GET("/drafts", handler.ListBatches)
		raport.GET("/drafts/:batch_id", handler.GetDrafts)
		raport.POST("/confirm", handler.Confirm)
		raport.POST("/import/complete", handler.CompleteImport)
	}
}

// NewRouter builds the engine with the middleware stack and all routes.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(CORSMiddleware())
	SetupRoutes(router, handler)
	return router
}
