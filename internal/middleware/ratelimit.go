package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/asset-maintenance/internal/config"
)

// tokenBucket takes ARGV[6] tokens from the bucket at KEYS[1] if it holds
// that many.  Tokens come back in whole refill intervals.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local per_interval = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])
local cost = tonumber(ARGV[6])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
if not tokens or not stamp then
    tokens, stamp = capacity, now
end

local steps = math.floor(math.max(0, now - stamp) / interval)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * per_interval)
    stamp = stamp + steps * interval
end

local wait = 0
local ok = 0
if tokens >= cost then
    ok = 1
    tokens = tokens - cost
else
    local missing = math.ceil((cost - tokens) / per_interval)
    wait = missing * interval - (now - stamp)
    if wait < 0 then wait = 0 end
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ttl)
return { ok, tokens, wait }
`)

// requestCost charges writes more than reads; completing a schedule is a
// write.
func requestCost(cfg config.RateLimitConfig, method string) int {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return 1
	}
	if cfg.WriteCost < 1 {
		return 1
	}
	if cfg.WriteCost > cfg.Capacity {
		return cfg.Capacity
	}
	return cfg.WriteCost
}

// NewTokenBucket limits requests per key (see RateLimitConfig.KeyStrategy).
// Without Redis, or with limiting disabled, it is a no-op.  Redis errors
// let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	interval := cfg.RefillInterval.Milliseconds()
	ttl := int64(cfg.TTL / time.Second)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			cost := requestCost(cfg, c.Request().Method)

			res, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens, interval, ttl, cost).Slice()
			if err != nil || len(res) != 3 {
				logrus.WithError(err).WithField("key", key).Warn("rate limit check skipped")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(asInt64(res[1]), 10))
			if asInt64(res[0]) == 1 {
				return next(c)
			}

			secs := int((asInt64(res[2]) + 999) / 1000)
			h.Set("Retry-After", strconv.Itoa(secs))
			logrus.WithFields(logrus.Fields{"key": key, "cost": cost}).Debug("rate limited")
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
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
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// buildRateKey joins the prefix with the parts named by the strategy:
// "ip", "user", "ip_user", "user_route" or (default) "ip_user_route".
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	strategy := strings.ToLower(cfg.KeyStrategy)
	if strategy == "" {
		strategy = "ip_user_route"
	}
	parts := []string{cfg.Prefix}
	if strings.Contains(strategy, "ip") {
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		parts = append(parts, "ip", ip)
	}
	if strings.Contains(strategy, "user") {
		parts = append(parts, "user", identity(c))
	}
	if strings.Contains(strategy, "route") {
		parts = append(parts, "route", c.Request().Method+" "+c.Path())
	}
	return strings.Join(parts, ":")
}
