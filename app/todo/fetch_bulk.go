package todo

import (
	"bitwise74/todo-api/internal"
	"bitwise74/todo-api/internal/model"
	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page is one page of the caller's todos
type Page struct {
	CurrentPage int          `json:"current_page"`
	Data        []model.Todo `json:"data"`
	From        *int         `json:"from"`
	To          *int         `json:"to"`
	LastPage    int          `json:"last_page"`
	PerPage     int          `json:"per_page"`
	Total       int64        `json:"total"`
}

func TodoList(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)
	perPage := d.Config.Pagination.PageSize

	// Anything that isn't a positive number is the first page
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	db := d.DB.WithContext(c.Request.Context())

	var total int64
	if err := db.Model(&model.Todo{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		response.Error(c, apperr.Unexpected(err, "failed to count todos"))
		return
	}

	lastPage := max(1, int((total+int64(perPage)-1)/int64(perPage)))

	// Pages past the last one are empty, the offset isn't computed for them
	entries := []model.Todo{}
	if page <= lastPage {
		err = db.
			Where("user_id = ?", userID).
			Order("id asc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&entries).
			Error
		if err != nil {
			response.Error(c, apperr.Unexpected(err, "failed to fetch todos"))
			return
		}
	}

	response.Success(c, msgList, paginate(entries, page, perPage, lastPage, total))
}

func paginate(entries []model.Todo, page, perPage, lastPage int, total int64) *Page {
	p := &Page{
		CurrentPage: page,
		Data:        entries,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}

	if len(entries) > 0 {
		from := (page-1)*perPage + 1
		to := from + len(entries) - 1
		p.From = &from
		p.To = &to
	}

	return p
}
