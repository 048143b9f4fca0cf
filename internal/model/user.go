// Package model defines database models
package model

import "time"

type User struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash    string     `gorm:"not null" json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`

	// Set and cleared together, see verification_code.go
	VerificationCodeHash     *string    `json:"-"`
	VerificationCodeIssuedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Todos      []Todo      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuthTokens []AuthToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) HasEmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
