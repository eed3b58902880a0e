package http

import (
	"net/http"
	"time"

	"github.com/finkeeper/go-ledger-sync/internal/logger"
)

// withLogging emits one access line per request after the response has
// been written. Payloads never appear in it: the blobs are ciphertext,
// but access logs still should not grow with ledger contents.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &responseWriter{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		logger.FromRequest(r).Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", recorder.status).
			Int("size", recorder.size).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
