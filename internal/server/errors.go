package server

import (
	"errors"
	"net/http"

	"github.com/coptimize/openinventory/internal/migration"
	"github.com/coptimize/openinventory/internal/prefs"
	productdomain "github.com/coptimize/openinventory/internal/product/domain"
	userdomain "github.com/coptimize/openinventory/internal/user/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}
	case errors.Is(err, userdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "invalid credentials"}
	case errors.Is(err, productdomain.ErrPermissionDenied),
		errors.Is(err, userdomain.ErrPermissionDenied):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "permission denied"}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "not found"}
	case errors.Is(err, productdomain.ErrBarcodeTaken),
		errors.Is(err, userdomain.ErrUsernameTaken),
		errors.Is(err, migration.ErrAlreadyMigrated),
		errors.Is(err, prefs.ErrAuthModeLocked):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
	case errors.Is(err, migration.ErrMigrationFailed):
		return http.StatusInternalServerError, errorPayload{Type: "migration_failed", Message: "migration failed and was rolled back"}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, productdomain.ErrInvalidQuantity),
		errors.Is(err, userdomain.ErrInvalidUsername),
		errors.Is(err, userdomain.ErrInvalidPassword),
		errors.Is(err, userdomain.ErrInvalidRole):
		return true
	default:
		return false
	}
}
