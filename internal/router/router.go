package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bizdir-backend/internal/handler"
	"bizdir-backend/internal/service"
)

// RegisterRoutes binds every business endpoint onto the engine.
func RegisterRoutes(engine *gin.Engine, services *service.Registry, log *zap.Logger) {
	handler.NewSearchHandler(services.Search, log).RegisterRoutes(engine)
	handler.NewBusinessHandler(services.Listing, log).RegisterRoutes(engine)
}
