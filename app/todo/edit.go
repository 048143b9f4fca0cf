package todo

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// TodoEdit serves both PUT and PATCH. Both replace title and description.
func TodoEdit(c *gin.Context, d *internal.Deps) {
	var data todoBody
	if err := d.Validator.Bind(c, &data); err != nil {
		response.Error(c, err)
		return
	}

	todo, err := findOwned(c, d, actionUpdate)
	if err != nil {
		response.Error(c, err)
		return
	}

	todo.Title = data.Title
	todo.Description = data.Description

	err = d.DB.WithContext(c.Request.Context()).
		Model(todo).
		Select("title", "description", "updated_at").
		Updates(todo).
		Error
	if err != nil {
		response.Error(c, apperr.Unexpected(err, "failed to update todo"))
		return
	}

	response.Success(c, msgUpdated, todo)
}
