package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/attendance-api/internal/errs"
)

type markRequest struct {
	StudentID int64  `param:"student_id" json:"-" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=Present Absent"`
	Note      string `json:"note" validate:"max=5"`
}

func (r *markRequest) Validate() error {
	return Struct(r)
}

type weekendRequest struct {
	Day string `json:"day"`
}

func (r *weekendRequest) Validate() error {
	if r.Day == "Saturday" || r.Day == "Sunday" {
		return CustomValidationErrors{{Field: "day", Message: "must be a school day"}}
	}
	return nil
}

func bind(t *testing.T, body string, payload Validatable) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/students/7/attendance", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("student_id")
	c.SetParamValues("7")

	return BindAndValidate(c, payload)
}

func TestBindAndValidateSuccess(t *testing.T) {
	var req markRequest
	require.NoError(t, bind(t, `{"date":"2024-03-01","status":"Present"}`, &req))

	assert.Equal(t, int64(7), req.StudentID)
	assert.Equal(t, "2024-03-01", req.Date)
	assert.Equal(t, "Present", req.Status)
}

func TestBindAndValidateFieldErrors(t *testing.T) {
	var req markRequest
	err := bind(t, `{"date":"01-03-2024","status":"Late","note":"too long"}`, &req)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed", httpErr.Message)

	messages := map[string]string{}
	for _, fe := range httpErr.Errors {
		messages[fe.Field] = fe.Error
	}
	assert.Equal(t, map[string]string{
		"date":   "must be a date in YYYY-MM-DD format",
		"status": "must be one of: Present Absent",
		"note":   "must not exceed 5 characters",
	}, messages)
}

func TestBindAndValidateMalformedBody(t *testing.T) {
	var req markRequest
	err := bind(t, `{"date":`, &req)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidateCustomErrors(t *testing.T) {
	var req weekendRequest
	err := bind(t, `{"day":"Sunday"}`, &req)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, errs.FieldError{Field: "day", Error: "must be a school day"}, httpErr.Errors[0])
}
