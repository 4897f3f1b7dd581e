package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/septic-booking-service/internal/api/handlers"
)

const msgTooManyRequests = "слишком много запросов, повторите попытку позже"

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nano
}

// RateLimiter ограничение частоты запросов для каждого участника.
// Неактивные лимитеры удаляются через Sweep/Run.
type RateLimiter struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter создает ограничитель; burst <= 0 заменяется на 5
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{rps: rate.Limit(rps), burst: burst, now: time.Now}
}

// Middleware отклоняет запросы сверх лимита с кодом 429.
// Ключ: ID участника, если он уже известен, иначе адрес клиента.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.getLimiter(clientKey(r)).Allow() {
			handlers.RespondTooManyRequests(w, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := l.now().UnixNano()

	if v, ok := l.limiters.Load(key); ok {
		e := v.(*limiterEntry)
		e.lastSeen.Store(now)
		return e.limiter
	}

	e := &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
	e.lastSeen.Store(now)
	actual, loaded := l.limiters.LoadOrStore(key, e)
	if loaded {
		e = actual.(*limiterEntry)
		e.lastSeen.Store(now)
	}
	return e.limiter
}

// Sweep удаляет лимитеры, к которым не обращались дольше idle.
// Возвращает число удалённых.
func (l *RateLimiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()
	removed := 0
	l.limiters.Range(func(key, value any) bool {
		if value.(*limiterEntry).lastSeen.Load() < cutoff && l.limiters.CompareAndDelete(key, value) {
			removed++
		}
		return true
	})
	return removed
}

// Run вызывает Sweep каждые interval до отмены ctx
func (l *RateLimiter) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(idle)
		}
	}
}

func clientKey(r *http.Request) string {
	if actor, ok := GetActor(r.Context()); ok {
		return "actor:" + strconv.FormatInt(actor.ID, 10)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "unknown"
}
