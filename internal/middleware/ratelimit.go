package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"

	"herbarium/internal/transport/http/dto/response"
)

// Clock отдаёт текущее время. В тестах подменяется фиктивными часами,
// чтобы проверять сброс окна без ожидания.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RateLimiter скользящее окно фиксированной длины на счётчиках в
// go-cache. Счётчик живёт ровно одно окно, просроченные записи чистит
// сам кэш.
type RateLimiter struct {
	mu     sync.Mutex
	cache  *gocache.Cache
	limit  int
	window time.Duration
	clock  Clock
}

type bucket struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(limit, window, realClock{})
}

func NewRateLimiterWithClock(limit int, window time.Duration, clock Clock) *RateLimiter {
	return &RateLimiter{
		cache:  gocache.New(window, 2*window),
		limit:  limit,
		window: window,
		clock:  clock,
	}
}

// Allow учитывает одно обращение по ключу и сообщает, укладывается ли
// оно в лимит текущего окна.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()

	var b bucket
	if v, ok := rl.cache.Get(key); ok {
		b = v.(bucket)
	}

	if b.resetAt.IsZero() || !now.Before(b.resetAt) {
		b = bucket{count: 0, resetAt: now.Add(rl.window)}
	}

	b.count++
	rl.cache.Set(key, b, b.resetAt.Sub(now))

	return b.count <= rl.limit
}

// Middleware ограничивает частоту запросов по IP клиента.
func (rl *RateLimiter) Middleware(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s", scope, c.RealIP())
			if !rl.Allow(key) {
				return c.JSON(http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			}
			return next(c)
		}
	}
}
