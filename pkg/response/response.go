// Package response writes the JSON envelope every endpoint answers with
package response

import (
	"errors"
	"net/http"

	"bitwise74/todo-api/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MsgUnexpected   = "Something went wrong. Please try again."
	MsgBodyTooLarge = "Request body size exceeds limit"
)

type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Success(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Envelope{Message: msg, Data: orEmpty(data)})
}

// Error aborts the request with the status mapped from err's kind. Errors that
// are not *apperr.Error, and unexpected ones, become a generic 500 and are
// logged. Their detail never reaches the client.
func Error(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = &apperr.Error{Kind: apperr.KindUnexpected, Err: err}
	}

	switch e.Kind {
	case apperr.KindValidation:
		abort(c, http.StatusUnprocessableEntity, e.Message, e.Fields)
	case apperr.KindAuthentication, apperr.KindAuthorization:
		abort(c, http.StatusForbidden, e.Message, nil)
	case apperr.KindUnauthenticated:
		abort(c, http.StatusUnauthorized, e.Message, nil)
	case apperr.KindNotFound:
		abort(c, http.StatusNotFound, e.Message, e.Fields)
	case apperr.KindCooldown:
		// Existing clients expect a 500 for the cooldown
		abort(c, http.StatusInternalServerError, e.Message, nil)
	case apperr.KindTooLarge:
		abort(c, http.StatusRequestEntityTooLarge, e.Message, nil)
	default:
		zap.L().Error("Unexpected error",
			zap.String("requestID", c.GetString("requestID")),
			zap.String("location", e.Location),
			zap.String("message", e.Message),
			zap.Error(e.Err))

		abort(c, http.StatusInternalServerError, MsgUnexpected, nil)
	}
}

// Abort writes msg with the given status and no data
func Abort(c *gin.Context, status int, msg string) {
	abort(c, status, msg, nil)
}

func abort(c *gin.Context, status int, msg string, fields []string) {
	var data any
	if len(fields) > 0 {
		data = fields
	}

	c.AbortWithStatusJSON(status, Envelope{Message: msg, Data: orEmpty(data)})
}

func orEmpty(data any) any {
	if data == nil {
		return []any{}
	}

	return data
}
