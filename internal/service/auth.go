package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitwise74/todo-api/config"
	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/security"
	"bitwise74/todo-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MsgRegistered     = "Please verify your email to continue."
	MsgEmailTaken     = "The email has already been taken."
	MsgEmailUnknown   = "The selected email is invalid."
	MsgBadCredentials = "The given credentials do not match."
	MsgUnverified     = "Please verify your email first"
	MsgLoggedIn       = "Logged in successfully."
	MsgEmailVerified  = "Email verified successfully. Please login to your account."
	MsgInvalidCode    = "The verification code is either invalid or expired. Please try again."
	MsgPasswordReset  = "Password reset successfully. Please login to your account."
	MsgResendCooldown = "Verification code already sent to your email. Please try again after a minute."
	MsgLoggedOut      = "Logged out successfully."
)

const userIDLength = 16

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthService runs the account flows. Every flow returns an *apperr.Error
// the transport layer can render as is.
type AuthService struct {
	db       *gorm.DB
	hasher   security.Hasher
	sessions *SessionIssuer
	mailer   Mailer
	ttl      time.Duration
	cooldown time.Duration
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, h security.Hasher, s *SessionIssuer, m Mailer, c config.Verification) *AuthService {
	return &AuthService{
		db:       db,
		hasher:   h,
		sessions: s,
		mailer:   m,
		ttl:      c.TTL(),
		cooldown: c.Cooldown(),
		now:      time.Now,
	}
}

// Register creates an unverified user and mails them a verification code.
// The user is removed again if the mail can't be sent.
func (a *AuthService) Register(ctx context.Context, in *RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)

	var n int64
	err := a.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&n).
		Error
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to check if email is registered")
	}

	if n > 0 {
		return nil, apperr.Validation(validators.MsgInvalidForm, MsgEmailTaken)
	}

	hash, err := a.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to hash password")
	}

	userID, err := gonanoid.Generate(idCharset, userIDLength)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to generate user ID")
	}

	user := &model.User{
		ID:           userID,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
	}

	code, err := user.IssueVerificationCode(a.hasher, a.now())
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to issue verification code")
	}

	if err := a.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation(validators.MsgInvalidForm, MsgEmailTaken)
		}

		return nil, apperr.Unexpected(err, "failed to create user")
	}

	err = a.mailer.SendVerificationMail(ctx, &VerificationMail{
		To:           user.Email,
		UserName:     user.Name,
		Code:         code,
		Registration: true,
	})
	if err != nil {
		a.discardUser(user.ID)
		return nil, apperr.Unexpected(err, "failed to send verification mail")
	}

	zap.L().Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

// discardUser undoes a registration. It runs on a fresh context since the
// request one may be the reason we got here.
func (a *AuthService) discardUser(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.db.WithContext(ctx).Delete(&model.User{}, "id = ?", userID).Error; err != nil {
		zap.L().Error("Failed to remove user after failed registration", zap.String("user_id", userID), zap.Error(err))
	}
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := a.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := a.hasher.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to verify password")
	}

	if !ok {
		return nil, apperr.Authentication(MsgBadCredentials)
	}

	if !user.HasEmailVerified() {
		return nil, apperr.Authentication(MsgUnverified)
	}

	token, err := a.sessions.Issue(ctx, user)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to issue session token")
	}

	zap.L().Info("User logged in", zap.String("user_id", user.ID))

	return &LoginResult{
		Token: token,
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

func (a *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	now := a.now()

	return a.consumeCode(ctx, email, code, now, func(*model.User) (map[string]any, error) {
		return map[string]any{"email_verified_at": now}, nil
	})
}

func (a *AuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	return a.consumeCode(ctx, email, code, a.now(), func(*model.User) (map[string]any, error) {
		hash, err := a.hasher.GenerateFromPassword(password)
		if err != nil {
			return nil, apperr.Unexpected(err, "failed to hash password")
		}

		return map[string]any{"password_hash": hash}, nil
	})
}

// consumeCode validates code for the user behind email and, on success,
// persists the cleared code together with the updates apply returns. The
// update only lands if the stored code is still the one that was checked,
// so a code can't be used twice by concurrent requests.
func (a *AuthService) consumeCode(ctx context.Context, email, code string, now time.Time, apply func(*model.User) (map[string]any, error)) error {
	user, err := a.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	checked := user.VerificationCodeHash

	ok, err := user.ValidateAndConsume(a.hasher, code, now, a.ttl)
	if err != nil {
		return apperr.Unexpected(err, "failed to validate verification code")
	}

	if !ok {
		return apperr.Authentication(MsgInvalidCode)
	}

	updates, err := apply(user)
	if err != nil {
		return err
	}

	updates["verification_code_hash"] = nil
	updates["verification_code_issued_at"] = nil

	swapped, err := a.swapCode(ctx, user.ID, checked, updates)
	if err != nil {
		return apperr.Unexpected(err, "failed to persist verification result")
	}

	if !swapped {
		zap.L().Warn("Verification code changed concurrently", zap.String("user_id", user.ID))
		return apperr.Authentication(MsgInvalidCode)
	}

	return nil
}

// ResendCode issues a new code unless the cooldown of the active one is still
// running. The previous code stops validating.
func (a *AuthService) ResendCode(ctx context.Context, email string) error {
	user, err := a.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	now := a.now()
	if !user.ResendAllowed(now, a.cooldown) {
		return apperr.Cooldown(MsgResendCooldown)
	}

	previous := user.VerificationCodeHash

	code, err := user.IssueVerificationCode(a.hasher, now)
	if err != nil {
		return apperr.Unexpected(err, "failed to issue verification code")
	}

	swapped, err := a.swapCode(ctx, user.ID, previous, map[string]any{
		"verification_code_hash":      *user.VerificationCodeHash,
		"verification_code_issued_at": now,
	})
	if err != nil {
		return apperr.Unexpected(err, "failed to store verification code")
	}

	// Someone else issued or consumed a code in the meantime
	if !swapped {
		return apperr.Cooldown(MsgResendCooldown)
	}

	err = a.mailer.SendVerificationMail(ctx, &VerificationMail{
		To:       user.Email,
		UserName: user.Name,
		Code:     code,
	})
	if err != nil {
		return apperr.Unexpected(err, "failed to send verification mail")
	}

	zap.L().Info("Verification code resent", zap.String("user_id", user.ID))
	return nil
}

func (a *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := a.sessions.Revoke(ctx, tokenID); err != nil {
		return apperr.Unexpected(err, "failed to revoke token")
	}

	return nil
}

// swapCode applies updates only if the stored code hash still equals
// previous. It reports whether the row was updated.
func (a *AuthService) swapCode(ctx context.Context, userID string, previous *string, updates map[string]any) (bool, error) {
	q := a.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID)

	if previous == nil {
		q = q.Where("verification_code_hash IS NULL")
	} else {
		q = q.Where("verification_code_hash = ?", *previous)
	}

	r := q.Updates(updates)
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

func (a *AuthService) findByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := a.db.WithContext(ctx).
		Where("email = ?", strings.TrimSpace(email)).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation(validators.MsgInvalidForm, MsgEmailUnknown)
		}

		return nil, apperr.Unexpected(err, "failed to look up user")
	}

	return &user, nil
}
