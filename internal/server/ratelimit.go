package server

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// RefreshLimiter is a single token bucket shared by every caller of the
// refresh endpoint. Rebuilds read the whole export, so the limit is global
// rather than per client.
type RefreshLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time
}

// NewRefreshLimiter allows one refresh per interval with the given burst
func NewRefreshLimiter(every time.Duration, burst int) *RefreshLimiter {
	return &RefreshLimiter{
		limiter: rate.NewLimiter(rate.Every(every), burst),
		now:     time.Now,
	}
}

// Allow reports whether a refresh may run now
func (l *RefreshLimiter) Allow() bool {
	return l.limiter.AllowN(l.now().UTC(), 1)
}

// Middleware rejects requests with 429 once the bucket is empty
func (l *RefreshLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			internal.LogWarn("Rate limit exceeded for path: %s", r.URL.Path)
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
