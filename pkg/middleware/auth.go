package middleware

import (
	"context"
	"errors"
	"strings"

	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const MsgUnauthenticated = "You are not authenticated. Please login first."

// TokenResolver turns a bearer token into the session it belongs to
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*model.AuthToken, error)
}

// NewAuthMiddleware requires a valid bearer token and sets userID, tokenID
// and user on the context
func NewAuthMiddleware(r TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Error(c, apperr.Unauthenticated(MsgUnauthenticated))
			return
		}

		row, err := r.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, service.ErrInvalidSession) {
				zap.L().Debug("Rejected bearer token", zap.Error(err), zap.String("requestID", requestID))
				response.Error(c, apperr.Unauthenticated(MsgUnauthenticated))
				return
			}

			response.Error(c, apperr.Unexpected(err, "failed to resolve bearer token"))
			return
		}

		c.Set("userID", row.UserID)
		c.Set("tokenID", row.ID)
		c.Set("user", &row.User)
		c.Next()
	}
}
