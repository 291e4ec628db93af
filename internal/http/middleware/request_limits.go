package middleware

import (
	"net/http"

	"github.com/insightguardian/insightguardian/internal/httputil"
)

// RequestSizeLimit caps the request body at maxBytes. A declared
// Content-Length over the cap is refused with 413 before the handler runs;
// otherwise the handler sees a MaxBytesError on read. maxBytes <= 0 disables it.
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
