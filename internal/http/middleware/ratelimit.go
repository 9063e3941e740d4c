package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yungbote/pearls-backend/internal/http/response"
	"github.com/yungbote/pearls-backend/internal/observability"
	"github.com/yungbote/pearls-backend/internal/pkg/ctxutil"
)

// RateLimiter keeps one token bucket per caller: the user id when signed in,
// the client IP otherwise.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	metrics *observability.Metrics
	now     func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   int
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perMinute requests per caller with a burst of the same
// size. perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int, metrics *observability.Metrics) *RateLimiter {
	rl := &RateLimiter{
		idle:    10 * time.Minute,
		metrics: metrics,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	if perMinute > 0 {
		rl.limit = rate.Limit(float64(perMinute) / 60.0)
		rl.burst = perMinute
	}
	return rl
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.burst == 0 {
			c.Next()
			return
		}
		if !rl.allow(callerKey(c)) {
			route := c.FullPath()
			if route == "" {
				route = "unknown"
			}
			rl.metrics.IncRateLimited(route)
			retry := time.Duration(float64(time.Second) / float64(rl.limit))
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			response.RespondStatus(c, http.StatusTooManyRequests, "rate_limited", fmt.Errorf("too many requests"))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.seen = now
	rl.calls++
	if rl.calls%512 == 0 {
		for k, v := range rl.buckets {
			if now.Sub(v.seen) > rl.idle {
				delete(rl.buckets, k)
			}
		}
	}
	return b.lim.AllowN(now, 1)
}

func callerKey(c *gin.Context) string {
	if p := ctxutil.GetPrincipal(c.Request.Context()); p != nil {
		return "user:" + strconv.FormatUint(uint64(p.UserID), 10)
	}
	return "ip:" + c.ClientIP()
}
