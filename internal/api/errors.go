package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/bobarin/voicegate/internal/models"
	"github.com/bobarin/voicegate/internal/services"
)

const redacted = "[REDACTED]"

// errorStatus is the single mapping from error kind to HTTP status.
var errorStatus = []struct {
	kind   error
	status int
}{
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrEngineUnavailable, http.StatusInternalServerError},
}

// statusFor classifies err. Anything not in errorStatus is an unexpected failure (500).
func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.kind) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// detailFor is the client-facing message. Input errors show their reason, prefixed
// with the field when the reason does not already name it; other errors keep the
// full chain with any configured secret masked.
func detailFor(err error, secrets []string) string {
	var inErr *services.InputError
	if errors.As(err, &inErr) {
		if inErr.Field == "" || strings.Contains(inErr.Reason, inErr.Field) {
			return inErr.Reason
		}
		return inErr.Field + ": " + inErr.Reason
	}
	return redact(err.Error(), secrets)
}

func redact(msg string, secrets []string) string {
	for _, s := range secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, redacted)
		}
	}
	return msg
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Detail: message})
}

// respondErr writes err as {"detail": ...} with the status from errorStatus.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := detailFor(err, h.cfg.Secrets)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] id=%s %s %s -> %d: %s", SynthesisIDFrom(r.Context()), r.Method, r.URL.Path, status, detail)
	}
	respondError(w, status, detail)
}
