package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/asset-maintenance/internal/utils"
)

const testSecret = "middleware-secret-123"

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, uint64) {
	t.Helper()
	e := echo.New()
	var seen uint64
	e.GET("/", func(c echo.Context) error {
		seen, _ = UserID(c)
		return c.NoContent(http.StatusOK)
	}, JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func signed(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTAuth(t *testing.T) {
	good, err := utils.NewAccessToken(testSecret, 42, 5)
	require.NoError(t, err)

	rec, uid := serve(t, "Bearer "+good.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 42, uid)

	future := jwt.NewNumericDate(time.Now().Add(time.Minute))
	cases := map[string]string{
		"missing header":  "",
		"not bearer":      "Basic abc",
		"garbage":         "Bearer not-a-jwt",
		"wrong secret":    "Bearer " + signed(t, "another-secret-456", jwt.RegisteredClaims{Subject: "42", ExpiresAt: future}),
		"expired":         "Bearer " + signed(t, testSecret, jwt.RegisteredClaims{Subject: "42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}),
		"non numeric sub": "Bearer " + signed(t, testSecret, jwt.RegisteredClaims{Subject: "admin", ExpiresAt: future}),
		"zero sub":        "Bearer " + signed(t, testSecret, jwt.RegisteredClaims{Subject: "0", ExpiresAt: future}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, uid := serve(t, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Zero(t, uid)
		})
	}
}
