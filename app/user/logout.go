package user

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/service"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserLogout revokes only the token the request was made with
func UserLogout(c *gin.Context, d *internal.Deps) {
	tokenID := c.MustGet("tokenID").(string)

	if err := d.Auth.Logout(c.Request.Context(), tokenID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, service.MsgLoggedOut, nil)
}
