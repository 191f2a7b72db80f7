package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/asset-maintenance/internal/config"
)

func TestRequestCost(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 5, WriteCost: 3}
	assert.Equal(t, 1, requestCost(cfg, http.MethodGet))
	assert.Equal(t, 3, requestCost(cfg, http.MethodPost))
	assert.Equal(t, 3, requestCost(cfg, http.MethodDelete))

	cfg.WriteCost = 50
	assert.Equal(t, 5, requestCost(cfg, http.MethodPatch), "never more than a full bucket")
	cfg.WriteCost = 0
	assert.Equal(t, 1, requestCost(cfg, http.MethodPut))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/maintenance-schedules/3/complete", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/maintenance-schedules/:id/complete")
	c.Set(userIDKey, uint64(7))

	cases := map[string]string{
		"ip":         "rl:ip:10.0.0.9",
		"user":       "rl:user:7",
		"ip_user":    "rl:ip:10.0.0.9:user:7",
		"user_route": "rl:user:7:route:POST /v1/maintenance-schedules/:id/complete",
		"":           "rl:ip:10.0.0.9:user:7:route:POST /v1/maintenance-schedules/:id/complete",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}

	anon := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "rl:user:anon", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, anon))
}

func TestNewTokenBucketWithoutRedisPassesThrough(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		assert.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
