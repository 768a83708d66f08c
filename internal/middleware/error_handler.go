package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bizdir-backend/internal/dto/result"
)

// ErrorHandler converts panics into a JSON error response so a bad request
// never takes the worker down with a blank 500.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", zap.Any("error", rec))
				ctx.JSON(http.StatusInternalServerError, result.Fail("internal server error"))
				ctx.Abort()
			}
		}()
		ctx.Next()
	}
}
