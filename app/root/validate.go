package root

import (
	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

const msgAuthenticated = "You are authenticated."

// Validate is reached only with a valid bearer token, the auth middleware
// rejects everything else
func Validate(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	response.Success(c, msgAuthenticated, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}
