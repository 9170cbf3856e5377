package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/tokens"
	"github.com/ecomapp/storefront/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "server-test-secret-32-bytes-xxxxxx"
	cfg.JWT.TokenTTL = time.Hour
	cfg.Payment.Provider = "sandbox"
	return cfg
}

func TestRouterHealthAndSwagger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	d, err := buildDeps(context.Background(), cfg)
	require.NoError(t, err)
	defer d.Close()
	r := newRouter(cfg, d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRegisterAndLoginInMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	d, err := buildDeps(context.Background(), cfg)
	require.NoError(t, err)
	r := newRouter(cfg, d)

	body := `{"name":"A","email":"a@example.com","password":"secret1","phone":"1","address":"2","answer":"3"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
}

func TestReadyReportsRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := mr.RunT(t)
	cfg := testConfig()
	host, port, _ := strings.Cut(m.Addr(), ":")
	cfg.Redis.Host, cfg.Redis.Port = host, port
	d, err := buildDeps(context.Background(), cfg)
	require.NoError(t, err)
	defer d.Close()
	require.NotNil(t, d.redis)
	r := newRouter(cfg, d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":true`)

	m.Close()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouterRateLimitsPerSignedInUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RPS = 0.001
	cfg.RateLimit.Burst = 1
	d, err := buildDeps(context.Background(), cfg)
	require.NoError(t, err)
	defer d.Close()
	r := newRouter(cfg, d)

	call := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/user-auth", nil)
		if token != "" {
			req.Header.Set("Authorization", token)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	var toks []string
	for _, email := range []string{"one@example.com", "two@example.com"} {
		u, err := d.services.Users.Register(context.Background(), users.RegisterInput{
			Name: "N", Email: email, Password: "secret1", Phone: "1", Address: "2", Answer: "3",
		})
		require.NoError(t, err)
		tok, err := tokens.GenerateAccessToken(cfg, u)
		require.NoError(t, err)
		toks = append(toks, tok)
	}

	// same client address, separate buckets per user
	assert.Equal(t, http.StatusOK, call(toks[0]))
	assert.Equal(t, http.StatusOK, call(toks[1]))
	assert.Equal(t, http.StatusTooManyRequests, call(toks[0]))

	// anonymous and forged tokens share the address bucket
	assert.Equal(t, http.StatusUnauthorized, call("not-a-token"))
	assert.Equal(t, http.StatusTooManyRequests, call(""))
}
