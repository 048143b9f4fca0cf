package user

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type resetBody struct {
	Email                string `json:"email" form:"email" validate:"required,email,maxstr"`
	Password             string `json:"password" form:"password" validate:"required,min=8,maxstr"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
	VerificationCode     string `json:"verification_code" form:"verification_code" validate:"required,len=6"`
}

func UserResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if err := d.Validator.Bind(c, &data); err != nil {
		response.Error(c, err)
		return
	}

	err := d.Auth.ResetPassword(c.Request.Context(), data.Email, data.VerificationCode, data.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, service.MsgPasswordReset, nil)
}
