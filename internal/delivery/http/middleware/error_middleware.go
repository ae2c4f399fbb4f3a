package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
	"cddiller-backend/pkg/logger"
)

// ErrorHandler maps errors appended to the gin context onto the response
// envelope. Domain sentinels get their canonical status codes; anything
// unrecognized becomes an opaque 500 so internals never leak.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "Invalid email or password", nil)
		case errors.Is(err, domain.ErrInactiveAccount):
			response.Error(c, http.StatusForbidden, "Account inactive. Please contact administrator.", nil)
		case errors.Is(err, domain.ErrProfileNotFound):
			response.Error(c, http.StatusUnauthorized, "Unable to load user profile", nil)
		case errors.Is(err, domain.ErrSuperadminExists):
			response.Error(c, http.StatusConflict, "Superadmin already exists", nil)
		case errors.Is(err, domain.ErrLoginBlocked):
			response.Error(c, http.StatusTooManyRequests, "Too many failed attempts. Try again later.", nil)
		default:
			logger.Log.Error("unhandled request error", "path", c.Request.URL.Path, "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}
