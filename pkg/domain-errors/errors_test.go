package dErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(cause, CodeNotFound, "profile not found")

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.True(t, errors.Is(err, cause), "wrapped cause should survive errors.Is")

	// A further fmt wrap must still expose the code.
	outer := fmt.Errorf("update progress: %w", err)
	assert.True(t, HasCode(outer, CodeNotFound))
}

func TestMessageOfUncodedError(t *testing.T) {
	err := errors.New("pq: connection refused")
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeUnavailable:  http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
