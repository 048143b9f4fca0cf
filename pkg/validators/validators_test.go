package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitwise74/todo-api/pkg/apperr"
	"bitwise74/todo-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name                 string `json:"name" form:"name" validate:"required,maxstr"`
	Email                string `json:"email" form:"email" validate:"required,email,maxstr"`
	Password             string `json:"password" form:"password" validate:"required,min=8,maxstr"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
	VerificationCode     string `json:"verification_code" form:"verification_code" validate:"omitempty,len=6,numeric"`
}

func fields(t *testing.T, err error) []string {
	t.Helper()

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, MsgInvalidForm, e.Message)
	return e.Fields
}

func newValidator(t *testing.T, maxStrLen int) *Validator {
	t.Helper()

	v, err := New(maxStrLen)
	require.NoError(t, err)
	return v
}

func TestNew_RejectsNonPositiveLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := New(n)
		assert.Error(t, err, "length %d", n)
	}
}

func TestStruct_Valid(t *testing.T) {
	v := newValidator(t, 255)

	err := v.Struct(&registerForm{
		Name:                 "Ann",
		Email:                "ann@example.com",
		Password:             "pw123456",
		PasswordConfirmation: "pw123456",
		VerificationCode:     "004211",
	})
	assert.NoError(t, err)
}

func TestStruct_Messages(t *testing.T) {
	v := newValidator(t, 10)

	tests := []struct {
		name string
		form registerForm
		want []string
	}{
		{
			name: "all missing",
			form: registerForm{},
			want: []string{
				"The name field is required.",
				"The email field is required.",
				"The password field is required.",
				"The password confirmation field is required.",
			},
		},
		{
			name: "bad values",
			form: registerForm{
				Name:                 "A very long name",
				Email:                "nope",
				Password:             "short",
				PasswordConfirmation: "other",
				VerificationCode:     "12a",
			},
			want: []string{
				"The name must not be greater than 10 characters.",
				"The email must be a valid email address.",
				"The password must be at least 8 characters.",
				"The password confirmation does not match.",
				"The verification code must be 6 characters.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields(t, v.Struct(&tt.form)))
		})
	}
}

func TestStruct_MaxStrCountsRunes(t *testing.T) {
	v := newValidator(t, 3)

	type form struct {
		Title string `json:"title" validate:"maxstr"`
	}

	assert.NoError(t, v.Struct(&form{Title: "äöü"}))
	assert.Equal(t, []string{"The title must not be greater than 3 characters."}, fields(t, v.Struct(&form{Title: "äöüß"})))
}

func bindRequest(t *testing.T, contentType, body string, obj any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", contentType)

	return newValidator(t, 255).Bind(c, obj)
}

func TestBind_JSON(t *testing.T) {
	var form registerForm
	err := bindRequest(t, "application/json",
		`{"name":"Ann","email":"ann@example.com","password":"pw123456","password_confirmation":"pw123456"}`, &form)

	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", form.Email)
}

func TestBind_Form(t *testing.T) {
	var form registerForm
	err := bindRequest(t, "application/x-www-form-urlencoded",
		"name=Ann&email=ann%40example.com&password=pw123456&password_confirmation=pw123456", &form)

	require.NoError(t, err)
	assert.Equal(t, "Ann", form.Name)
}

func TestBind_EmptyBody(t *testing.T) {
	var form registerForm
	err := bindRequest(t, "application/json", "", &form)

	assert.Contains(t, fields(t, err), "The email field is required.")
}

func TestBind_Malformed(t *testing.T) {
	var form registerForm
	err := bindRequest(t, "application/json", `{"email":`, &form)

	assert.Equal(t, []string{"The request body is malformed."}, fields(t, err))
}

func TestBind_BodyOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+strings.Repeat("a", 64)+`"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.ContentLength = -1
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)

	var form registerForm
	err := newValidator(t, 255).Bind(c, &form)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindTooLarge, e.Kind)
	assert.Equal(t, response.MsgBodyTooLarge, e.Message)
}
