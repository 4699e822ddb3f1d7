package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bobarin/voicegate/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	input := &services.InputError{Field: "text", Reason: "text is required"}
	unavailable := &services.UnavailableError{Engine: "espeak-ng"}

	assert.Equal(t, http.StatusBadRequest, statusFor(input))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrapped: %w", input)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(unavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestDetailFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text is required", detailFor(&services.InputError{Field: "text", Reason: "text is required"}, nil))
	assert.Equal(t, "voice_to_be_cloned: a reference voice sample is required by xtts",
		detailFor(&services.InputError{Field: "voice_to_be_cloned", Reason: "a reference voice sample is required by xtts"}, nil))
	assert.Equal(t, "bad key [REDACTED] rejected", detailFor(errors.New("bad key sk-1 rejected"), []string{"", "sk-1"}))
}
