package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/logger"
	"saldo/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return userID.(string), nil
}

// authorizeOwner is the gate every user-scoped handler calls first: the
// acting identity must equal the userId path parameter. No store access
// happens before this check passes.
func authorizeOwner(c *gin.Context) (string, error) {
	actingID, err := getUserID(c)
	if err != nil {
		return "", err
	}
	owner := c.Param("userId")
	if owner == "" {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "userId: is required")
	}
	if actingID != owner {
		return "", apperrors.ErrForbidden
	}
	return owner, nil
}

// parseTransactionID validates the transactionId path parameter format.
func parseTransactionID(c *gin.Context) (string, error) {
	id := c.Param("transactionId")
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "Invalid transaction ID format")
	}
	return id, nil
}

// parseFlexibleTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseFlexibleTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", value)
	}
	return parsed, err
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorResponse represents an error in the response
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
