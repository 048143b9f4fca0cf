package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/todo-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var ErrInvalidSession = errors.New("invalid or revoked session token")

// SessionIssuer hands out bearer tokens. Every token is a signed JWT pointing
// at an auth_tokens row, the row is what makes it valid.
type SessionIssuer struct {
	db     *gorm.DB
	secret []byte
	issuer string
	now    func() time.Time
}

func NewSessionIssuer(db *gorm.DB, secret, issuer string) *SessionIssuer {
	return &SessionIssuer{
		db:     db,
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (s *SessionIssuer) Issue(ctx context.Context, user *model.User) (string, error) {
	id, err := gonanoid.Generate(idCharset, 24)
	if err != nil {
		return "", fmt.Errorf("failed to generate token ID, %w", err)
	}

	row := &model.AuthToken{
		ID:     id,
		UserID: user.ID,
		Name:   s.issuer,
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", fmt.Errorf("failed to store auth token, %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       id,
		Subject:  user.ID,
		Issuer:   s.issuer,
		IssuedAt: jwt.NewNumericDate(s.now()),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		if dErr := s.db.WithContext(ctx).Delete(&model.AuthToken{}, "id = ?", id).Error; dErr != nil {
			zap.L().Warn("Failed to remove unsigned auth token", zap.String("token_id", id), zap.Error(dErr))
		}

		return "", fmt.Errorf("failed to sign auth token, %w", err)
	}

	return signed, nil
}

// Resolve returns the token row, with its user loaded, that tokenStr points at
func (s *SessionIssuer) Resolve(ctx context.Context, tokenStr string) (*model.AuthToken, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrInvalidSession, err)
	}

	if claims.ID == "" {
		return nil, ErrInvalidSession
	}

	var row model.AuthToken
	err = s.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND user_id = ?", claims.ID, claims.Subject).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}

		return nil, fmt.Errorf("failed to look up auth token, %w", err)
	}

	now := s.now()
	err = s.db.WithContext(ctx).
		Model(&model.AuthToken{}).
		Where("id = ?", row.ID).
		Update("last_used_at", now).
		Error
	if err != nil {
		zap.L().Warn("Failed to update token usage", zap.String("token_id", row.ID), zap.Error(err))
	} else {
		row.LastUsedAt = &now
	}

	return &row, nil
}

// Revoke deletes one token. Other tokens of the same user stay valid.
func (s *SessionIssuer) Revoke(ctx context.Context, tokenID string) error {
	err := s.db.WithContext(ctx).Delete(&model.AuthToken{}, "id = ?", tokenID).Error
	if err != nil {
		return fmt.Errorf("failed to revoke auth token, %w", err)
	}

	return nil
}
