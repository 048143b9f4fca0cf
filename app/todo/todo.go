// Package todo contains the per-user todo endpoints
package todo

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/pkg/apperr"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	msgList        = "Here is your todos list"
	msgCreated     = "Todo added successfully."
	msgFetched     = "Here is your todo."
	msgUpdated     = "Todo updated successfully."
	msgDeleted     = "Todo deleted successfully."
	msgBadTodoID   = "Please send the correct todos id."
	msgTodoMissing = "The requested todo does not exist."
)

type action string

const (
	actionAccess action = "access"
	actionUpdate action = "update"
	actionDelete action = "delete"
)

type todoBody struct {
	Title       string `json:"title" form:"title" validate:"required,maxstr"`
	Description string `json:"description" form:"description" validate:"required"`
}

// findOwned loads the todo named by the :id param. Missing todos are a not
// found error, todos of other users an authorization error.
func findOwned(c *gin.Context, d *internal.Deps, a action) (*model.Todo, error) {
	userID := c.MustGet("userID").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, apperr.NotFound(msgBadTodoID, msgTodoMissing)
	}

	var todo model.Todo
	err = d.DB.WithContext(c.Request.Context()).First(&todo, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgBadTodoID, msgTodoMissing)
		}

		return nil, apperr.Unexpected(err, "failed to fetch todo")
	}

	if !todo.OwnedBy(userID) {
		return nil, apperr.Authorization("You are not authorized to " + string(a) + " this todo.")
	}

	return &todo, nil
}
