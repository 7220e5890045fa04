package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handler "github.com/bruteforce-framework/bruteforce/internal/adapter/http"
)

// SetupRoutes mounts the search API and, when given, the metrics handler.
func SetupRoutes(r *gin.Engine, h *handler.SearchHandler, metrics http.Handler) {
	api := r.Group("/api/v1")
	{
		api.GET("/status", h.GetStatus)
		api.POST("/stop", h.StopSearch)
	}
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
}

// NewEngine returns a gin engine without the debug banner and request log.
func NewEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}
