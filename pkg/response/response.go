package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/carehub/storefront/pkg/errors"
)

// Response is the JSON envelope shared by every endpoint:
// {success, message?, data?, error?, meta?}.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// Meta describes list metadata.
type Meta struct {
	Count int `json:"count"`
	Total int `json:"total,omitempty"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage writes a JSON success response carrying a human readable message.
func SuccessWithMessage(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessWithMeta writes a JSON success response including list metadata.
func SuccessWithMeta(c *gin.Context, statusCode int, data any, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Success: false,
		Message: appErr.Message,
		Error:   appErr.Detail(),
	})
}

// Internal aborts the request with the generic 500 envelope used by the central error catcher.
func Internal(c *gin.Context, cause any) {
	detail := ""
	if cause != nil {
		detail = fmt.Sprint(cause)
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: appErrors.ErrInternalServer.Message,
		Error:   detail,
	})
}
