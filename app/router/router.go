package router

import (
	"dbscale/app/handler"
	"dbscale/app/middleware"

	"github.com/gin-gonic/gin"
)

// New builds the gin engine for serve mode.
func New(mode string, scaleHandler *handler.ScaleHandler) *gin.Engine {
	gin.SetMode(ginMode(mode))

	r := gin.New()
	r.Use(middleware.Logger(), middleware.Recovery())

	r.GET("/healthz", handler.Healthz)

	v1 := r.Group("/api/v1")
	{
		scale := v1.Group("/scale")
		{
			scale.POST("/up", scaleHandler.ScaleUp)
			scale.POST("/down", scaleHandler.ScaleDown)
		}
	}

	return r
}

func ginMode(mode string) string {
	if mode == "debug" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
