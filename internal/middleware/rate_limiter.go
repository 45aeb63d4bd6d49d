package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kiosco/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is a per-IP fixed-window limiter. A single till normally stays
// far below the limit; it guards against a runaway client retry loop.
type RateLimiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	entries map[string]*rateEntry
	ahora   func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*rateEntry),
		ahora:   time.Now,
	}
}

// permitir counts one request for ip and reports whether it is within the limit.
func (r *RateLimiter) permitir(ip string) (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.ahora()
	e, ok := r.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(r.window)}
		r.entries[ip] = e
	}
	e.count++
	return e.count <= r.limit, e.windowEnd
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.limit <= 0 {
			c.Next()
			return
		}
		ok, fin := r.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", fin.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge ─────────────────────────────────────────────────────────────────────

// StartPurge removes expired entries every interval until ctx is cancelled.
func (r *RateLimiter) StartPurge(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.purgar(); n > 0 {
					log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
				}
			}
		}
	}()
}

func (r *RateLimiter) purgar() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.ahora()
	purged := 0
	for ip, e := range r.entries {
		if now.After(e.windowEnd) {
			delete(r.entries, ip)
			purged++
		}
	}
	return purged
}
