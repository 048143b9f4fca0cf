package user

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type resendBody struct {
	Email string `json:"email" form:"email" validate:"required,maxstr"`
}

// UserResendCode mails a fresh code, used both for verification and for
// starting a password reset
func UserResendCode(c *gin.Context, d *internal.Deps) {
	var data resendBody
	if err := d.Validator.Bind(c, &data); err != nil {
		response.Error(c, err)
		return
	}

	if err := d.Auth.ResendCode(c.Request.Context(), data.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, service.MsgRegistered, nil)
}
