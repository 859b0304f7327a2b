package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tradedesk/backoffice/api/responses"
	pkgerrors "github.com/tradedesk/backoffice/pkg/errors"
	"github.com/tradedesk/backoffice/pkg/logger"
)

// RateLimiter counts requests within a fixed window and reports whether the
// current one still fits under the limit. *pkg/redis.Client satisfies it.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit throttles mutating requests per client address and route. Reads
// pass through untouched. A limiter outage fails open: throttling protects
// the API, it must never block a capture on its own.
func RateLimit(limiter RateLimiter, limit int64, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 || !mutatingMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			scope := strings.Join([]string{clientAddr(r), r.Method, routePattern(r)}, "|")
			allowed, _, err := limiter.FixedWindowAllow(r.Context(), scope, limit, window)
			if err != nil {
				logError(r.Context(), logg, "rate limit check", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimited, "request rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// clientAddr prefers the first X-Forwarded-For hop so limits follow the
// caller through the load balancer, falling back to the socket peer.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
