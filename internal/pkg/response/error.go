package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var statusByKind = map[apperror.Kind]int{
	apperror.KindNotFound:             http.StatusNotFound,
	apperror.KindInvalidRequest:       http.StatusBadRequest,
	apperror.KindConflict:             http.StatusConflict,
	apperror.KindInvalidTransition:    http.StatusConflict,
	apperror.KindAuthorizationDenied:  http.StatusForbidden,
	apperror.KindAuthenticationFailed: http.StatusUnauthorized,
}

// StatusOf returns the HTTP status for err's kind.
func StatusOf(err error) int {
	if status, ok := statusByKind[apperror.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error sends a JSON error response.
// Internal errors get a generic body and are attached to the context for the request logger.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		c.JSON(StatusOf(err), ErrorResponse{Error: appErr.Message, Kind: appErr.Kind.String()})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest reports a binding or validation failure.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
}
