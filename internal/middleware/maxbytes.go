package middleware

import "net/http"

// DefaultMaxBodyBytes caps request bodies at 1 MiB. Review text tops out at
// 500 characters, so anything near this limit is not a legitimate request.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes rejects request bodies larger than limit with 413.
func MaxBytes(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
