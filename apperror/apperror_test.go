package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"auth", Unauthorized(""), http.StatusUnauthorized},
		{"forbidden", Forbidden(""), http.StatusForbidden},
		{"validation", Validation("title is required"), http.StatusBadRequest},
		{"not found", NotFound("Book not found"), http.StatusNotFound},
		{"conflict", Conflict(""), http.StatusConflict},
		{"upstream", Upstream("Suna API", 502, "bad gateway"), http.StatusInternalServerError},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestUpstream_PreservesStatusAndBody(t *testing.T) {
	err := Upstream("Suna API", 429, `{"error":"slow down"}`)
	assert.Equal(t, `Suna API error (429): {"error":"slow down"}`, err.Message)
	assert.Equal(t, 429, err.UpstreamStatus)
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	nf := NotFound("Book not found")
	wrapped := fmt.Errorf("get book: %w", nf)
	got := From(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.True(t, IsKind(wrapped, KindNotFound))

	plain := From(errors.New("pq: connection reset"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, msgInternal, plain.Message)
	assert.ErrorContains(t, plain, "connection reset")
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, msgForbidden, Forbidden("").Message)
	assert.Equal(t, "Invalid user token", Unauthorized("Invalid user token").Message)
}
