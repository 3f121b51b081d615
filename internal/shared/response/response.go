package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"moviehub-backend/internal/shared/apperror"
)

// Envelope wraps a payload under its entity key, e.g.
// {"movie": {...}} or {"article": {...}}.
func Envelope(c *gin.Context, statusCode int, key string, payload interface{}) {
	c.JSON(statusCode, gin.H{key: payload})
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Key     string      `json:"key,omitempty"`
	Current interface{} `json:"current,omitempty"`
}

// Error translates a service-layer error into the HTTP status the
// transport contract requires and renders the value-carrying body.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Code: "INTERNAL", Message: "internal server error"}

	if appErr, ok := asAppError(err); ok {
		body = errorBody{
			Code:    string(appErr.Kind),
			Message: appErr.Message,
			Key:     appErr.Key,
			Current: appErr.Current,
		}
		switch appErr.Kind {
		case apperror.KindNotFound:
			status = http.StatusNotFound
		case apperror.KindForbidden:
			status = http.StatusForbidden
		case apperror.KindConflict:
			status = http.StatusConflict
		case apperror.KindValidation:
			status = http.StatusUnprocessableEntity
		case apperror.KindTransient:
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{"error": body})
}

func asAppError(err error) (*apperror.Error, bool) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// PreconditionFailed renders the 412 body for a stale If-Match, carrying
// the current entity and its fingerprint so the caller can refresh.
func PreconditionFailed(c *gin.Context, etag, key string, current interface{}) {
	c.Header("ETag", etag)
	c.JSON(http.StatusPreconditionFailed, gin.H{
		"error": errorBody{
			Code:    string(apperror.KindConflict),
			Message: "precondition failed",
			Key:     key,
			Current: current,
		},
	})
}
