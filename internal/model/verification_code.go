package model

import (
	"fmt"
	"time"

	"bitwise74/todo-api/pkg/security"
)

// A user either has no active verification code or exactly one, stored as
// a hash together with the time it was issued. The same code backs email
// verification and password resets.

func (u *User) HasActiveCode() bool {
	return u.VerificationCodeHash != nil && u.VerificationCodeIssuedAt != nil
}

// IssueVerificationCode replaces the active code with a fresh one and returns
// it in plaintext. The plaintext is never stored and must be handed to the
// mailer right away. Nothing is persisted here.
func (u *User) IssueVerificationCode(h security.Hasher, now time.Time) (string, error) {
	code, err := security.GenerateVerificationCode()
	if err != nil {
		return "", err
	}

	hash, err := h.GenerateFromPassword(code)
	if err != nil {
		return "", fmt.Errorf("failed to hash verification code, %w", err)
	}

	issuedAt := now
	u.VerificationCodeHash = &hash
	u.VerificationCodeIssuedAt = &issuedAt

	return code, nil
}

// ResendAllowed reports whether a new code may be issued at now
func (u *User) ResendAllowed(now time.Time, cooldown time.Duration) bool {
	if !u.HasActiveCode() {
		return true
	}

	return !now.Before(u.VerificationCodeIssuedAt.Add(cooldown))
}

// ValidateAndConsume checks candidate against the active code and clears the
// code when it matches and hasn't expired. A code issued at t is expired from
// t+ttl on, the boundary itself included.
func (u *User) ValidateAndConsume(h security.Hasher, candidate string, now time.Time, ttl time.Duration) (bool, error) {
	if !u.HasActiveCode() {
		return false, nil
	}

	ok, err := security.VerifyOptional(h, candidate, u.VerificationCodeHash)
	if err != nil {
		return false, fmt.Errorf("failed to verify code, %w", err)
	}

	if !ok {
		return false, nil
	}

	if !now.Before(u.VerificationCodeIssuedAt.Add(ttl)) {
		return false, nil
	}

	u.ClearVerificationCode()
	return true, nil
}

func (u *User) ClearVerificationCode() {
	u.VerificationCodeHash = nil
	u.VerificationCodeIssuedAt = nil
}
