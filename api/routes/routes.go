package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/feichai0017/pdf-toolbox/api/handlers"
	"github.com/feichai0017/pdf-toolbox/api/middleware"
)

// SetupRoutes wires all API routes.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")

	v1.GET("/health", h.Batch.Health)

	batches := v1.Group("/batches")
	{
		batches.POST("", h.Batch.SubmitBatch)
		batches.GET("/:jobId", h.Batch.GetStatus)
		batches.DELETE("/:jobId", h.Batch.CancelBatch)
	}
}
