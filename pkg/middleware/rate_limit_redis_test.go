package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func hit(r *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestRedisRateLimitMiddleware_FixedWindow(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 1, 0, time.Second))
	r.GET("/api/v1/product/get-product", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/api/v1/product/get-product"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/api/v1/product/get-product"))

	// counters expire with the window
	m.FastForward(2 * time.Second)
	require.Equal(t, http.StatusOK, hit(r, "/api/v1/product/get-product"))
}

func TestRedisRateLimitMiddleware_KeysBySignedInUser(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	uid := primitive.NewObjectID()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.Query("as") == "user" {
			c.Set(UserIDKey, uid)
		}
		c.Next()
	})
	r.Use(RedisRateLimitMiddleware(client, 1, 0, time.Minute))
	r.GET("/orders", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/orders?as=user"))
	// the anonymous caller from the same address has its own bucket
	require.Equal(t, http.StatusOK, hit(r, "/orders"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/orders?as=user"))

	keys := m.Keys()
	require.Len(t, keys, 2)
	var sawUser bool
	for _, k := range keys {
		if strings.HasPrefix(k, "rl:user:") {
			sawUser = true
		}
	}
	require.True(t, sawUser)
}

func TestRedisRateLimitMiddleware_NilClientFallsBackToMemory(t *testing.T) {
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 2, 1, time.Second))
	r.GET("/x", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, hit(r, "/x"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "/x"))
}
