package todo

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func TodoDelete(c *gin.Context, d *internal.Deps) {
	todo, err := findOwned(c, d, actionDelete)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := d.DB.WithContext(c.Request.Context()).Delete(todo).Error; err != nil {
		response.Error(c, apperr.Unexpected(err, "failed to delete todo"))
		return
	}

	response.Success(c, msgDeleted, nil)
}
