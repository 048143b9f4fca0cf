package todo

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TodoCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data todoBody
	if err := d.Validator.Bind(c, &data); err != nil {
		response.Error(c, err)
		return
	}

	db := d.DB.WithContext(c.Request.Context())

	todo := model.Todo{
		UserID:      userID,
		Title:       data.Title,
		Description: data.Description,
	}

	if err := db.Create(&todo).Error; err != nil {
		response.Error(c, apperr.Unexpected(err, "failed to create todo"))
		return
	}

	// Read it back so the response holds what was actually stored
	var stored model.Todo
	if err := db.First(&stored, todo.ID).Error; err != nil {
		if dErr := d.DB.Delete(&model.Todo{}, todo.ID).Error; dErr != nil {
			zap.L().Error("Failed to remove todo after failed create", zap.Uint("todo_id", todo.ID), zap.Error(dErr))
		}

		response.Error(c, apperr.Unexpected(err, "failed to read created todo"))
		return
	}

	response.Success(c, msgCreated, stored)
}
