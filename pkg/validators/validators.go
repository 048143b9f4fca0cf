// Package validators binds request bodies and turns validation failures
// into field messages clients can show next to the form
package validators

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const MsgInvalidForm = "Please fill the form correctly."

type Validator struct {
	v         *validator.Validate
	maxStrLen int
}

// New returns a validator whose "maxstr" tag caps strings at maxStrLen runes
func New(maxStrLen int) (*Validator, error) {
	if maxStrLen < 1 {
		return nil, fmt.Errorf("max string length must be positive, got %d", maxStrLen)
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	err := v.RegisterValidation("maxstr", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= maxStrLen
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register maxstr validation, %w", err)
	}

	return &Validator{v: v, maxStrLen: maxStrLen}, nil
}

// Bind decodes the request body into obj and validates it. An empty body
// counts as a form with every field missing.
func (v *Validator) Bind(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.TooLarge(response.MsgBodyTooLarge)
		}

		return apperr.Validation(MsgInvalidForm, "The request body is malformed.")
	}

	return v.Struct(obj)
}

func (v *Validator) Struct(obj any) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Unexpected(err, "failed to validate struct")
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, v.message(fe))
	}

	return apperr.Validation(MsgInvalidForm, fields...)
}

func (v *Validator) message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", field, fe.Param())
	case "maxstr":
		return fmt.Sprintf("The %s must not be greater than %d characters.", field, v.maxStrLen)
	case "len":
		return fmt.Sprintf("The %s must be %s characters.", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("The %s must be a number.", field)
	case "eqfield":
		return fmt.Sprintf("The %s does not match.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
