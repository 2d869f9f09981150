package middleware

import (
	"errors"
	"net/http"

	"go-resume-feedback/internal/delivery/http/response"
	"go-resume-feedback/pkg/apperror"
	"go-resume-feedback/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				if appErr.Err != nil {
					logger.Log.Error("request failed", "path", c.FullPath(), "message", appErr.Message, "error", appErr.Err)
				}
				response.Error(c, appErr.Code, appErr.Message, nil)
			} else {
				// Never expose internal error details to clients; log
				// server-side and send a generic message.
				logger.Log.Error("unhandled request error", "path", c.FullPath(), "error", err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
