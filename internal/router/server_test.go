package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/asset-maintenance/internal/config"
	"github.com/iliyamo/asset-maintenance/internal/database/dbtest"
	"github.com/iliyamo/asset-maintenance/internal/model"
	"github.com/iliyamo/asset-maintenance/internal/router"
	"github.com/iliyamo/asset-maintenance/internal/schedule"
	"github.com/iliyamo/asset-maintenance/internal/utils"
)

const secret = "test-secret-0123456789"

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	today, err := model.ParseDate("2024-01-31")
	require.NoError(t, err)
	e := router.New(router.Deps{
		Cfg: config.Config{
			JWTSecret:      secret,
			AccessTTLMin:   15,
			RefreshTTLDays: 7,
			BcryptCost:     4,
		},
		DB:      dbtest.New(t),
		Options: []schedule.Option{schedule.WithClock(schedule.FixedClock{Date: today})},
	})
	return &api{t: t, e: e}
}

func (a *api) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

// register creates a user and returns its access token.
func (a *api) register(email string) string {
	a.t.Helper()
	rec, body := a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Tester", "email": email, "password": "long-enough-pw",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	access := body["access"].(map[string]any)
	return access["token"].(string)
}

func (a *api) create(path, token string, body any) uint64 {
	a.t.Helper()
	rec, out := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return uint64(out["id"].(float64))
}

func TestHealthEndpoints(t *testing.T) {
	a := newAPI(t)
	rec, _ := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)
	token := a.register("flow@example.com")

	rec, _ := a.do(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Dup", "email": "flow@example.com", "password": "long-enough-pw",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "flow@example.com", "password": "long-enough-pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	refresh := body["refresh"].(map[string]any)["token"].(string)

	rec, _ = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "flow@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = a.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "flow@example.com", body["email"])

	rec, _ = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens rotate")
}

func TestMaintenanceRoutesRequireToken(t *testing.T) {
	a := newAPI(t)
	rec, _ := a.do(http.MethodGet, "/v1/maintenance-schedules", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := utils.NewAccessToken("some-other-secret-value", 1, 15)
	require.NoError(t, err)
	rec, _ = a.do(http.MethodGet, "/v1/maintenance-schedules", forged.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScheduleLifecycle(t *testing.T) {
	a := newAPI(t)
	token := a.register("owner@example.com")

	asset := a.create("/v1/assets", token, map[string]any{"name": "Generator"})
	typeID := a.create("/v1/maintenance-types", token, map[string]any{"name": "Oil"})
	record := a.create("/v1/maintenance-records", token, map[string]any{
		"asset_id": asset, "maintenance_type_id": typeID, "date_performed": "2024-01-31",
	})

	rec, body := a.do(http.MethodPost, "/v1/maintenance-schedules", token, map[string]any{
		"asset_id": asset, "maintenance_type_id": typeID, "frequency_type": "months", "frequency_value": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-02-29", body["scheduled_date"])
	assert.Equal(t, "pending", body["status"])
	id := uint64(body["id"].(float64))
	path := fmt.Sprintf("/v1/maintenance-schedules/%d", id)

	rec, body = a.do(http.MethodGet, "/v1/maintenance-schedules/upcoming?days=30", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 30, body["days"])

	rec, body = a.do(http.MethodPatch, path, token, map[string]any{"frequency_value": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, body["frequency_value"])

	rec, body = a.do(http.MethodPost, path+"/complete", token, map[string]any{"record_id": record})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-03-31", body["scheduled_date"])
	assert.EqualValues(t, record, body["based_on_record_id"])

	rec, _ = a.do(http.MethodPost, path+"/complete", token, map[string]any{"record_id": record})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = a.do(http.MethodPatch, path, token, map[string]any{"frequency_value": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = a.do(http.MethodGet, "/v1/maintenance-schedules/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total_schedules"])
	assert.EqualValues(t, 1, body["completed"])
	assert.EqualValues(t, 1, body["pending"])

	rec, body = a.do(http.MethodGet, fmt.Sprintf("/v1/maintenance-schedules/asset/%d", asset), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total"])

	rec, _ = a.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = a.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleErrorMapping(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner@example.com")
	stranger := a.register("stranger@example.com")
	asset := a.create("/v1/assets", owner, map[string]any{"name": "Generator"})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"zero frequency", http.MethodPost, "/v1/maintenance-schedules", owner,
			map[string]any{"asset_id": asset, "frequency_type": "days", "frequency_value": 0}, http.StatusBadRequest},
		{"unknown unit", http.MethodPost, "/v1/maintenance-schedules", owner,
			map[string]any{"asset_id": asset, "frequency_type": "years", "frequency_value": 1}, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/v1/maintenance-schedules", owner,
			map[string]any{"asset_id": asset, "frequency_type": "days", "frequency_value": 1, "scheduled_date": "31/01/2024"}, http.StatusBadRequest},
		{"foreign asset", http.MethodPost, "/v1/maintenance-schedules", stranger,
			map[string]any{"asset_id": asset, "frequency_type": "days", "frequency_value": 1}, http.StatusBadRequest},
		{"missing schedule", http.MethodGet, "/v1/maintenance-schedules/999", owner, nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/v1/maintenance-schedules/abc", owner, nil, http.StatusBadRequest},
		{"complete missing", http.MethodPost, "/v1/maintenance-schedules/999/complete", owner,
			map[string]any{"record_id": 1}, http.StatusNotFound},
		{"days too small", http.MethodGet, "/v1/maintenance-schedules/upcoming?days=0", owner, nil, http.StatusBadRequest},
		{"days too large", http.MethodGet, "/v1/maintenance-schedules/upcoming?days=366", owner, nil, http.StatusBadRequest},
		{"days not a number", http.MethodGet, "/v1/maintenance-schedules/upcoming?days=week", owner, nil, http.StatusBadRequest},
		{"foreign asset listing", http.MethodGet, fmt.Sprintf("/v1/maintenance-schedules/asset/%d", asset), stranger, nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := a.do(tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUpcomingDefaultsToAWeek(t *testing.T) {
	a := newAPI(t)
	token := a.register("owner@example.com")
	rec, body := a.do(http.MethodGet, "/v1/maintenance-schedules/upcoming", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, body["days"])
	assert.EqualValues(t, 0, body["total"])
}
