package user

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type verifyBody struct {
	Email            string `json:"email" form:"email" validate:"required,email,maxstr"`
	VerificationCode string `json:"verification_code" form:"verification_code" validate:"required,len=6"`
}

func UserVerify(c *gin.Context, d *internal.Deps) {
	var data verifyBody
	if err := d.Validator.Bind(c, &data); err != nil {
		response.Error(c, err)
		return
	}

	if err := d.Auth.VerifyEmail(c.Request.Context(), data.Email, data.VerificationCode); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, service.MsgEmailVerified, nil)
}
