package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const synthesisIDKey ctxKey = iota

// SynthesisIDHeader carries the per-request ID that appears in every log line for the request.
const SynthesisIDHeader = "X-Synthesis-ID"

// SynthesisID is middleware that tags each request with a fresh UUID. The ID is
// echoed in the X-Synthesis-ID response header and stored in the request context.
func SynthesisID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New()
		w.Header().Set(SynthesisIDHeader, id.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), synthesisIDKey, id)))
	})
}

// SynthesisIDFrom returns the ID set by SynthesisID, or uuid.Nil.
func SynthesisIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(synthesisIDKey).(uuid.UUID)
	return id
}

// LimitBody caps request bodies at maxBytes. Reads past the cap fail with *http.MaxBytesError.
func LimitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
