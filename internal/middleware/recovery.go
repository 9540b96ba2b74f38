package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/logger"
	"github.com/carehub/storefront/pkg/response"
)

// Recovery converts panics into the generic 500 envelope and logs the cause.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
					zap.Stack("stack"),
				)
				response.Internal(c, r)
			}
		}()
		c.Next()
	}
}

// Errors renders the last error attached with c.Error when a handler returned
// without writing a response.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		logger.WithModule("http").Warn("unhandled request error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Error(c, err)
	}
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, appErrors.New(
		appErrors.ErrNotFound.Code,
		fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
		http.StatusNotFound,
	))
}
