package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrappedError(t *testing.T) {
	base := Conflict("roll_no", "student with roll number %d already exists", 7)
	wrapped := fmt.Errorf("adding student: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.True(t, errors.Is(wrapped, &Error{Kind: KindConflict, Field: "roll_no"}))
	assert.False(t, errors.Is(wrapped, &Error{Kind: KindConflict, Field: "id"}))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestErrorMessageKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Connection(cause, "connecting to database")

	assert.Equal(t, "connecting to database: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestFromKind(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{InvalidArgument("status", "status must be Present or Absent"), http.StatusBadRequest, "BAD_REQUEST"},
		{NotFound("student with ID %d not found", 3), http.StatusNotFound, "NOT_FOUND"},
		{Conflict("roll_no", "duplicate"), http.StatusConflict, "CONFLICT"},
		{Connection(errors.New("refused"), "connect"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{Persistence(errors.New("disk full"), "insert"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			httpErr := FromKind(tt.err)
			require.Equal(t, tt.status, httpErr.Status)
			require.Equal(t, tt.code, httpErr.Code)
		})
	}

	invalid := FromKind(InvalidArgument("date", "date must be YYYY-MM-DD"))
	require.Len(t, invalid.Errors, 1)
	require.Equal(t, "date", invalid.Errors[0].Field)
}
