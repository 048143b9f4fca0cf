package user

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Name                 string `json:"name" form:"name" validate:"required,maxstr"`
	Email                string `json:"email" form:"email" validate:"required,email,maxstr"`
	Password             string `json:"password" form:"password" validate:"required,min=8,maxstr"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data registerBody
	if err := d.Validator.Bind(c, &data); err != nil {
		response.Error(c, err)
		return
	}

	_, err := d.Auth.Register(c.Request.Context(), &service.RegisterInput{
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, service.MsgRegistered, nil)
}
