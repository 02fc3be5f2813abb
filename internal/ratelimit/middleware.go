package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	dErrors "signalbox/pkg/domain-errors"
	"signalbox/pkg/platform/httputil"
	"signalbox/pkg/requestcontext"
)

// Middleware limits requests per client IP. The metadata middleware must run
// first so the IP is already resolved from the forwarding headers.
func Middleware(limiter Limiter, limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestcontext.ClientIP(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			d := limiter.Allow(key, limit)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				retry := time.Until(d.ResetAt).Seconds()
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retry)))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
