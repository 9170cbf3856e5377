package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/ecomapp/storefront/internal/categories"
	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/models"
	"github.com/ecomapp/storefront/internal/orders"
	"github.com/ecomapp/storefront/internal/payment"
	"github.com/ecomapp/storefront/internal/products"
	"github.com/ecomapp/storefront/internal/storage"
	"github.com/ecomapp/storefront/internal/tokens"
	"github.com/ecomapp/storefront/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t      *testing.T
	cfg    *config.Config
	router *gin.Engine
	svc    Services
	photos *storage.MemoryStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "handlers-test-secret-32-bytes-xxxx"
	cfg.JWT.TokenTTL = time.Hour

	m := mr.RunT(t)
	userRepo := users.NewMemoryRepository()
	catRepo := categories.NewMemoryRepository()
	prodRepo := products.NewMemoryRepository()
	photos := storage.NewMemoryStorage()
	svc := Services{
		Users:      users.NewService(userRepo),
		Categories: categories.NewService(catRepo),
		Products:   products.NewService(prodRepo, catRepo, photos),
		Orders:     orders.NewService(orders.NewMemoryRepository(), prodRepo, userRepo, payment.NewSandboxGateway()),
		Blacklist:  tokens.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()})),
	}

	r := gin.New()
	RegisterAPI(r.Group("/api/v1"), cfg, svc)
	return &testEnv{t: t, cfg: cfg, router: r, svc: svc, photos: photos}
}

// do sends a JSON request; body may be nil.
func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// account registers a user, optionally promotes it, and returns it with a token.
func (e *testEnv) account(email string, admin bool) (*models.User, string) {
	e.t.Helper()
	ctx := context.Background()
	u, err := e.svc.Users.Register(ctx, users.RegisterInput{
		Name: "User " + email, Email: email, Password: "secret1",
		Phone: "555-0100", Address: "1 Main St", Answer: "blue",
	})
	require.NoError(e.t, err)
	if admin {
		u, err = e.svc.Users.SetRole(ctx, email, models.RoleAdmin)
		require.NoError(e.t, err)
	}
	tok, err := tokens.GenerateAccessToken(e.cfg, u)
	require.NoError(e.t, err)
	return u, tok
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
