package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/schedule-builder/internal/config"
)

// tokenBucket keeps {tokens, stamp} per key.  Every whole interval since
// stamp adds refill tokens (up to capacity); a request spends cost tokens
// or is refused with the wait until enough have accrued.
// ARGV: now_ms, capacity, refill, interval_ms, ttl_s, cost.
// Returns {allowed, tokens_left, wait_ms}.
var tokenBucket = redis.NewScript(`
local now = tonumber(ARGV[1])
local cap = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local every = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])
local cost = tonumber(ARGV[6])

local cur = redis.call('HMGET', KEYS[1], 'tokens', 'stamp')
local left = tonumber(cur[1]) or cap
local stamp = tonumber(cur[2]) or now

local ticks = math.floor(math.max(0, now - stamp) / every)
if ticks > 0 then
	left = math.min(cap, left + ticks * refill)
	stamp = stamp + ticks * every
end

local ok, wait = 0, 0
if left >= cost then
	ok = 1
	left = left - cost
else
	local need = math.ceil((cost - left) / refill)
	wait = math.max(0, need * every - (now - stamp))
end

redis.call('HSET', KEYS[1], 'tokens', left, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ttl)
return { ok, left, wait }
`)

// NewTokenBucket limits requests per key (see RateLimitConfig.KeyStrategy).
// Reads cost one token; schedule edits cost cfg.WriteCost since each one
// resolves sections against the providers.  Without Redis, or when the
// script fails, requests pass through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			cost := requestCost(cfg, c.Request().Method)
			vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
				cost,
			).Result()
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: script failed for %s: %v", key, err)
				}
				return next(c)
			}
			allowed, remaining, waitMs, ok := bucketResult(vals)
			if !ok {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if allowed {
				return next(c)
			}
			secs := int(math.Ceil(float64(waitMs) / 1000.0))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded", "retry_after": secs})
		}
	}
}

// requestCost is 1 for safe methods and WriteCost (at most Capacity, so
// an idle bucket always admits it) for everything else.
func requestCost(cfg config.RateLimitConfig, method string) int {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return 1
	}
	return max(1, min(cfg.WriteCost, cfg.Capacity))
}

func bucketResult(v interface{}) (allowed bool, remaining, retryMs int64, ok bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return false, 0, 0, false
	}
	return asInt64(arr[0]) == 1, asInt64(arr[1]), asInt64(arr[2]), true
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
	return n
}

// rateKey builds prefix:ip:<ip>:session:<sid>:route:<route> with the
// parts named in the strategy ("ip_session" keeps ip and session).
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	parts := []string{cfg.Prefix}
	strategy := strings.ToLower(cfg.KeyStrategy)
	if strategy == "" {
		strategy = "ip_session"
	}
	for _, p := range strings.Split(strategy, "_") {
		switch p {
		case "ip":
			parts = append(parts, "ip", ip)
		case "session":
			parts = append(parts, "session", SessionID(c))
		case "route":
			parts = append(parts, "route", c.Request().Method+" "+c.Path())
		}
	}
	return strings.Join(parts, ":")
}
