package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/response"
)

// requestContext returns the request context, or Background for handlers
// invoked directly in tests without a request.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}

// intParam reads an integer path parameter and writes a 400 naming what when
// it does not parse.
func intParam(c *gin.Context, name, what string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.Error(c, appErrors.NewBadRequest(what+" must be an integer"))
		return 0, false
	}
	return value, true
}

// parseIntQuery falls back when the parameter is absent or malformed.
func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return fallback
	}
	return value
}

// parseBoolQuery treats anything strconv.ParseBool rejects as false.
func parseBoolQuery(c *gin.Context, key string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && parsed
}
