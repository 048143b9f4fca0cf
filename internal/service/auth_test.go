package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *authFixture) register(t *testing.T, name, email, password string) (*model.User, string) {
	t.Helper()

	u, err := f.auth.Register(context.Background(), &RegisterInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)

	return u, f.mailer.last(t).Code
}

func (f *authFixture) user(t *testing.T, email string) *model.User {
	t.Helper()

	var u model.User
	require.NoError(t, f.db.Where("email = ?", email).First(&u).Error)
	return &u
}

func otherCode(code string) string {
	if code == "000000" {
		return "000001"
	}

	return "000000"
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	u, code := f.register(t, "Alice", "a@x.com", "pw123456")

	stored := f.user(t, "a@x.com")
	assert.Equal(t, u.ID, stored.ID)
	assert.Equal(t, "Alice", stored.Name)
	assert.False(t, stored.HasEmailVerified())
	assert.True(t, stored.HasActiveCode())
	assert.WithinDuration(t, f.clock.t, *stored.VerificationCodeIssuedAt, 0)
	assert.NotEqual(t, code, *stored.VerificationCodeHash)
	assert.NotEqual(t, "pw123456", stored.PasswordHash)

	mail := f.mailer.last(t)
	assert.Equal(t, "a@x.com", mail.To)
	assert.Equal(t, "Alice", mail.UserName)
	assert.True(t, mail.Registration)
	assert.Regexp(t, `^[0-9]{6}$`, code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Alice", "a@x.com", "pw123456")

	_, err := f.auth.Register(context.Background(), &RegisterInput{Name: "Eve", Email: "a@x.com", Password: "pw654321"})
	requireAppErr(t, err, apperr.KindValidation, MsgEmailTaken)

	var n int64
	require.NoError(t, f.db.Model(&model.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, f.mailer.count(), "no mail for the rejected registration")
}

func TestRegister_MailFailureRemovesUser(t *testing.T) {
	f := newAuthFixture(t)
	f.mailer.err = errors.New("smtp down")

	_, err := f.auth.Register(context.Background(), &RegisterInput{Name: "Alice", Email: "a@x.com", Password: "pw123456"})
	requireAppErr(t, err, apperr.KindUnexpected, "")

	var n int64
	require.NoError(t, f.db.Model(&model.User{}).Count(&n).Error)
	assert.Zero(t, n)

	// The address is free again
	f.mailer.err = nil
	f.register(t, "Alice", "a@x.com", "pw123456")
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, code := f.register(t, "Alice", "a@x.com", "pw123456")

	_, err := f.auth.Login(ctx, "nobody@x.com", "pw123456")
	requireAppErr(t, err, apperr.KindValidation, MsgEmailUnknown)

	_, err = f.auth.Login(ctx, "a@x.com", "pw1234567")
	requireAppErr(t, err, apperr.KindAuthentication, MsgBadCredentials)

	_, err = f.auth.Login(ctx, "a@x.com", "pw123456")
	requireAppErr(t, err, apperr.KindAuthentication, MsgUnverified)

	require.NoError(t, f.auth.VerifyEmail(ctx, "a@x.com", code))

	// Wrong password is still rejected once verified
	_, err = f.auth.Login(ctx, "a@x.com", "pw1234567")
	requireAppErr(t, err, apperr.KindAuthentication, MsgBadCredentials)

	res, err := f.auth.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Alice", res.Name)
	assert.Equal(t, "a@x.com", res.Email)
	assert.Equal(t, f.user(t, "a@x.com").ID, res.ID)
}

func TestVerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, code := f.register(t, "Alice", "a@x.com", "pw123456")

	err := f.auth.VerifyEmail(ctx, "a@x.com", otherCode(code))
	requireAppErr(t, err, apperr.KindAuthentication, MsgInvalidCode)
	assert.True(t, f.user(t, "a@x.com").HasActiveCode(), "wrong code must not consume")

	require.NoError(t, f.auth.VerifyEmail(ctx, "a@x.com", code))

	u := f.user(t, "a@x.com")
	require.True(t, u.HasEmailVerified())
	assert.WithinDuration(t, f.clock.t, *u.EmailVerifiedAt, 0)
	assert.Nil(t, u.VerificationCodeHash)
	assert.Nil(t, u.VerificationCodeIssuedAt)

	err = f.auth.VerifyEmail(ctx, "a@x.com", code)
	requireAppErr(t, err, apperr.KindAuthentication, MsgInvalidCode)
}

func TestVerifyEmail_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.auth.VerifyEmail(context.Background(), "nobody@x.com", "123456")
	requireAppErr(t, err, apperr.KindValidation, MsgEmailUnknown)
}

func TestVerifyEmail_TTLBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		ok      bool
	}{
		{"nine minutes", 9 * time.Minute, true},
		{"one second before expiry", 10*time.Minute - time.Second, true},
		{"exactly ten minutes", 10 * time.Minute, false},
		{"eleven minutes", 11 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, code := f.register(t, "Alice", "a@x.com", "pw123456")

			f.clock.advance(tt.elapsed)

			err := f.auth.VerifyEmail(context.Background(), "a@x.com", code)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				requireAppErr(t, err, apperr.KindAuthentication, MsgInvalidCode)
				assert.False(t, f.user(t, "a@x.com").HasEmailVerified())
			}
		})
	}
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, code := f.register(t, "Alice", "a@x.com", "pw123456")
	require.NoError(t, f.auth.VerifyEmail(ctx, "a@x.com", code))

	f.clock.advance(2 * time.Minute)
	require.NoError(t, f.auth.ResendCode(ctx, "a@x.com"))
	code = f.mailer.last(t).Code
	assert.False(t, f.mailer.last(t).Registration)

	err := f.auth.ResetPassword(ctx, "a@x.com", otherCode(code), "newpass99")
	requireAppErr(t, err, apperr.KindAuthentication, MsgInvalidCode)

	require.NoError(t, f.auth.ResetPassword(ctx, "a@x.com", code, "newpass99"))
	assert.False(t, f.user(t, "a@x.com").HasActiveCode())

	_, err = f.auth.Login(ctx, "a@x.com", "pw123456")
	requireAppErr(t, err, apperr.KindAuthentication, MsgBadCredentials)

	_, err = f.auth.Login(ctx, "a@x.com", "newpass99")
	assert.NoError(t, err)

	err = f.auth.ResetPassword(ctx, "a@x.com", code, "another99")
	requireAppErr(t, err, apperr.KindAuthentication, MsgInvalidCode)
}

func TestResendCode_Cooldown(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, first := f.register(t, "Alice", "a@x.com", "pw123456")

	f.clock.advance(30 * time.Second)
	err := f.auth.ResendCode(ctx, "a@x.com")
	requireAppErr(t, err, apperr.KindCooldown, MsgResendCooldown)
	assert.Equal(t, 1, f.mailer.count())

	f.clock.advance(30 * time.Second)
	require.NoError(t, f.auth.ResendCode(ctx, "a@x.com"))
	assert.Equal(t, 2, f.mailer.count())

	second := f.mailer.last(t).Code
	u := f.user(t, "a@x.com")
	assert.WithinDuration(t, f.clock.t, *u.VerificationCodeIssuedAt, 0)

	if first != second {
		err = f.auth.VerifyEmail(ctx, "a@x.com", first)
		requireAppErr(t, err, apperr.KindAuthentication, MsgInvalidCode)
	}

	require.NoError(t, f.auth.VerifyEmail(ctx, "a@x.com", second))
}

func TestResendCode_WithoutActiveCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, code := f.register(t, "Alice", "a@x.com", "pw123456")
	require.NoError(t, f.auth.VerifyEmail(ctx, "a@x.com", code))

	// No active code means no cooldown either
	require.NoError(t, f.auth.ResendCode(ctx, "a@x.com"))
	assert.True(t, f.user(t, "a@x.com").HasActiveCode())
}

func TestResendCode_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.auth.ResendCode(context.Background(), "nobody@x.com")
	requireAppErr(t, err, apperr.KindValidation, MsgEmailUnknown)
}

func TestSwapCode_StaleHashLoses(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, code := f.register(t, "Alice", "a@x.com", "pw123456")

	// A second request that read the user before the first one consumed the code
	stale := f.user(t, "a@x.com")
	require.NoError(t, f.auth.VerifyEmail(ctx, "a@x.com", code))

	swapped, err := f.auth.swapCode(ctx, stale.ID, stale.VerificationCodeHash, map[string]any{
		"password_hash":               "attacker",
		"verification_code_hash":      nil,
		"verification_code_issued_at": nil,
	})
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.NotEqual(t, "attacker", f.user(t, "a@x.com").PasswordHash)
}

func TestScenario_RegisterVerifyLoginLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, code := f.register(t, "Alice", "a@x.com", "pw123456")

	requireAppErr(t, f.auth.VerifyEmail(ctx, "a@x.com", otherCode(code)), apperr.KindAuthentication, MsgInvalidCode)
	require.NoError(t, f.auth.VerifyEmail(ctx, "a@x.com", code))

	res, err := f.auth.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	tok, err := f.sessions.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID, tok.User.ID)

	require.NoError(t, f.auth.Logout(ctx, tok.ID))

	_, err = f.sessions.Resolve(ctx, res.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
