package internal

import (
	"bitwise74/todo-api/config"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/security"
	"bitwise74/todo-api/pkg/validators"

	"gorm.io/gorm"
)

type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Argon     security.Hasher
	Validator *validators.Validator
	Sessions  *service.SessionIssuer
	Auth      *service.AuthService
	MailQueue *service.MailQueue
}
