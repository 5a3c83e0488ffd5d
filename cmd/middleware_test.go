package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
	"ospreyBack/utils"
)

func testApp(t *testing.T) *application {
	t.Helper()
	tm, err := utils.NewManager("test-signing-key", time.Hour)
	require.NoError(t, err)
	return &application{log: zap.NewNop(), tokens: tm}
}

func TestRequireAdmin(t *testing.T) {
	app := testApp(t)
	adminToken, _, err := app.tokens.NewJWT(models.AdminUser{ID: "adm-1", Role: "admin"})
	require.NoError(t, err)
	staffToken, _, err := app.tokens.NewJWT(models.AdminUser{ID: "u-2", Role: "staff"})
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := app.requireAdmin(ok)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
		{"wrong role", "Bearer " + staffToken, "", http.StatusForbidden},
		{"admin header", "Bearer " + adminToken, "", http.StatusNoContent},
		{"admin query", "", "?token=" + adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/metrics"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequestIdentity(t *testing.T) {
	var gotRequest, gotTrace string
	h := requestIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = reqctx.RequestID(r.Context())
		gotTrace = reqctx.TraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	req.Header.Set("X-Trace-ID", "trace-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "req-1", gotRequest)
	assert.Equal(t, "trace-1", gotTrace)
	assert.Equal(t, "req-1", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "trace-1", rr.Header().Get("X-Trace-ID"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, gotRequest)
	assert.Equal(t, gotRequest, gotTrace)
	assert.Equal(t, gotRequest, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, gotTrace, rr.Header().Get("X-Trace-ID"))
}

func TestCORSExposesCorrelationHeaders(t *testing.T) {
	h := newCORS([]string{"https://osprey.example"}).Handler(requestIdentity(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Origin", "https://osprey.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://osprey.example", rr.Header().Get("Access-Control-Allow-Origin"))
	exposed := rr.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "X-Request-Id")
	assert.Contains(t, exposed, "X-Trace-Id")
}

func TestRecoverPanic(t *testing.T) {
	app := testApp(t)
	h := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "Internal server error"))
}
