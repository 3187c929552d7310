package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rohits-web03/sharelink/internal/ratelimit"
	"github.com/rohits-web03/sharelink/internal/utils"
)

// RateLimit admits requests against class c per client and advertises the
// window state in X-RateLimit-* headers.
func RateLimit(limiter *ratelimit.Limiter, c ratelimit.Class, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			client := ratelimit.ClientID(r)
			d := limiter.Admit(c, client)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retry := int(time.Until(d.ResetAt).Seconds()) + 1
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(retry))
				logger.Warn("rate limit exceeded", "class", c.Name, "ip", client, "path", r.URL.Path)
				utils.Fail(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
