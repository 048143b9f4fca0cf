package model

import "time"

// AuthToken backs a bearer token. The token handed to the client is a signed
// JWT whose jti is ID, so deleting the row revokes the token.
type AuthToken struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index;not null"`
	Name       string
	LastUsedAt *time.Time
	CreatedAt  time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
