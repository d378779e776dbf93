package middleware

// Rate limiting keeps one token bucket per client in Redis so every API
// instance draws from the same budget.

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-api/internal/config"
)

// Decision is the outcome of spending one token.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter spends one token from the bucket stored under key.
type Limiter interface {
	Take(ctx context.Context, key string) (Decision, error)
}

// bucketScript refills continuously at burst tokens per window and keeps the
// fractional balance together with the millisecond it was computed at.
// ARGV: now_ms, burst, window_ms. Reply: {allowed, whole tokens left, wait_ms}.
var bucketScript = redis.NewScript(`
local now, burst, window = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3])
local state = redis.call('HMGET', KEYS[1], 'balance', 'at')
local balance = tonumber(state[1]) or burst
local at = tonumber(state[2]) or now
if now > at then
  balance = math.min(burst, balance + (now - at) * burst / window)
  at = now
end
local allowed, wait = 0, 0
if balance >= 1 then
  balance = balance - 1
  allowed = 1
else
  wait = math.ceil((1 - balance) * window / burst)
end
redis.call('HSET', KEYS[1], 'balance', tostring(balance), 'at', at)
redis.call('PEXPIRE', KEYS[1], window)
return {allowed, math.floor(balance), wait}
`)

// RedisLimiter is a Limiter evaluated atomically inside Redis.
type RedisLimiter struct {
	rdb    redis.Scripter
	burst  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter returns a limiter sized by cfg.  *redis.Client satisfies
// redis.Scripter.
func NewRedisLimiter(rdb redis.Scripter, cfg config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, burst: cfg.Burst, window: cfg.Window, now: time.Now}
}

// Take spends one token from key.
func (l *RedisLimiter) Take(ctx context.Context, key string) (Decision, error) {
	reply, err := bucketScript.Run(ctx, l.rdb, []string{key},
		l.now().UnixMilli(), l.burst, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(reply) != 3 {
		return Decision{}, fmt.Errorf("rate limit %s: unexpected reply %v", key, reply)
	}
	return Decision{
		Allowed:    reply[0] == 1,
		Limit:      l.burst,
		Remaining:  int(reply[1]),
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// RateLimit spends a token from the caller's bucket in scope before the
// handler runs.  Authenticated requests are keyed by identity, so on
// protected groups it goes after JWTAuth; anonymous ones by client IP.  A nil
// Limiter disables limiting and a Limiter error lets the request through.
func RateLimit(l Limiter, prefix, scope string, logger *slog.Logger) echo.MiddlewareFunc {
	if l == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := rateKey(prefix, scope, c)
			d, err := l.Take(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "rate limiter unavailable", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if d.Allowed {
				return next(c)
			}

			secs := max(int((d.RetryAfter+time.Second-1)/time.Second), 1)
			h.Set("Retry-After", strconv.Itoa(secs))
			logger.DebugContext(ctx, "rate limited", slog.String("key", key), slog.Duration("retry_after", d.RetryAfter))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"msg":         "Too many requests",
				"retry_after": secs,
			})
		}
	}
}

// rateKey is <prefix>:<scope>:user:<id> for an authenticated caller and
// <prefix>:<scope>:ip:<addr> otherwise.
func rateKey(prefix, scope string, c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return prefix + ":" + scope + ":user:" + strconv.FormatUint(id, 10)
	}
	return prefix + ":" + scope + ":ip:" + c.RealIP()
}
