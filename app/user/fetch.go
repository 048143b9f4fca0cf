package user

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
)

const msgProfile = "Here is your profile."

// UserFetch returns the authenticated user together with their latest todos
func UserFetch(c *gin.Context, d *internal.Deps) {
	user := c.MustGet("user").(*model.User)

	var latest []model.Todo
	err := d.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Limit(5).
		Find(&latest).
		Error
	if err != nil {
		response.Error(c, apperr.Unexpected(err, "failed to fetch latest todos"))
		return
	}

	var total int64
	err = d.DB.WithContext(c.Request.Context()).
		Model(&model.Todo{}).
		Where("user_id = ?", user.ID).
		Count(&total).
		Error
	if err != nil {
		response.Error(c, apperr.Unexpected(err, "failed to count todos"))
		return
	}

	response.Success(c, msgProfile, gin.H{
		"user":       user,
		"todos":      latest,
		"todo_count": total,
	})
}
