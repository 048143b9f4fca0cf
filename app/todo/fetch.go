package todo

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func TodoFetch(c *gin.Context, d *internal.Deps) {
	todo, err := findOwned(c, d, actionAccess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, msgFetched, todo)
}
