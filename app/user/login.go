package user

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Email    string `json:"email" form:"email" validate:"required,email,maxstr"`
	Password string `json:"password" form:"password" validate:"required,min=8,maxstr"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if err := d.Validator.Bind(c, &data); err != nil {
		response.Error(c, err)
		return
	}

	res, err := d.Auth.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, service.MsgLoggedIn, res)
}
