package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-api/internal/auth"
)

func guarded(t *testing.T, iss *auth.Issuer) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		ctxID, ok := IdentityFromContext(c.Request().Context())
		require.True(t, ok)
		require.Equal(t, id, ctxID)
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	}, JWTAuth(iss))
	return e
}

func msgOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["msg"].(string)
	return msg
}

func TestJWTAuth(t *testing.T) {
	t.Parallel()

	iss := auth.NewIssuer("secret", time.Hour)
	good, err := iss.Issue(11)
	require.NoError(t, err)
	forged, err := auth.NewIssuer("nope", time.Hour).Issue(11)
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		msg     string
	}{
		{"no header", nil, http.StatusUnauthorized, msgMissingToken},
		{"empty bearer", map[string]string{"Authorization": "Bearer "}, http.StatusUnauthorized, msgMissingToken},
		{"bad signature", map[string]string{"Authorization": "Bearer " + forged.Token}, http.StatusUnauthorized, msgInvalidToken},
		{"garbage", map[string]string{"Authorization": "Bearer abc"}, http.StatusUnauthorized, msgInvalidToken},
		{"wrong scheme", map[string]string{"Authorization": "Basic " + good.Token}, http.StatusUnauthorized, msgInvalidToken},
		{"bearer", map[string]string{"Authorization": "Bearer " + good.Token}, http.StatusOK, ""},
		{"lowercase scheme", map[string]string{"Authorization": "bearer " + good.Token}, http.StatusOK, ""},
		{"alternate header", map[string]string{AltTokenHeader: good.Token}, http.StatusOK, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := guarded(t, iss)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":11}`, rec.Body.String())
				return
			}
			assert.Equal(t, tc.msg, msgOf(t, rec))
		})
	}
}

func TestIdentityFromUnauthenticated(t *testing.T) {
	t.Parallel()

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := IdentityFrom(c)
	assert.False(t, ok)
	assert.Equal(t, "anon", userID(c))

	setIdentity(c, 5)
	id, ok := IdentityFrom(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), id)
	assert.Equal(t, "5", userID(c))
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/boom", func(echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "short and stout") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "request handled", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "/boom", entry["route"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.Equal(t, "anon", entry["user"])
}
