package main

import (
	"context"
	"net/http"
	"time"

	"github.com/ecomapp/storefront/handlers"
	"github.com/ecomapp/storefront/internal/categories"
	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/database"
	"github.com/ecomapp/storefront/internal/orders"
	"github.com/ecomapp/storefront/internal/payment"
	"github.com/ecomapp/storefront/internal/products"
	"github.com/ecomapp/storefront/internal/storage"
	"github.com/ecomapp/storefront/internal/tokens"
	"github.com/ecomapp/storefront/internal/users"
	"github.com/ecomapp/storefront/pkg/logger"
	"github.com/ecomapp/storefront/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// deps holds the wired services and the clients backing them. Nil clients
// mean the in-memory fallback is in use.
type deps struct {
	services handlers.Services
	mongo    *mongo.Client
	redis    *redis.Client
	minio    *storage.MinIOStorage
}

func (d *deps) Close() {
	if d.mongo != nil {
		_ = d.mongo.Disconnect(context.Background())
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

// buildDeps connects to the configured backends. MongoDB and MinIO fall back
// to process memory when not configured; Redis features are disabled.
func buildDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	d := &deps{}

	if addr := cfg.RedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = client.Close()
		} else {
			logger.Infof("Connected to Redis: %s", addr)
			d.redis = client
		}
	}

	var (
		userRepo  users.UserRepository
		catRepo   categories.Repository
		prodRepo  products.Repository
		orderRepo orders.Repository
	)
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, func(attempt int, err error) {
			logger.Warnf("attempt %d/5: failed to connect to MongoDB: %v", attempt, err)
		})
		if err != nil {
			return nil, err
		}
		d.mongo = client
		db := client.Database(cfg.MongoDB.Database)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		userRepo = users.NewMongoUserRepository(db.Collection(database.ColUsers))
		catRepo = categories.NewMongoRepository(db.Collection(database.ColCategories))
		prodRepo = products.NewMongoRepository(db.Collection(database.ColProducts))
		orderRepo = orders.NewMongoRepository(db.Collection(database.ColOrders))
		logger.Infof("Using MongoDB database %q", cfg.MongoDB.Database)
	} else {
		logger.Warn("MONGODB_URI is not set; data is kept in memory and lost on restart")
		userRepo = users.NewMemoryRepository()
		catRepo = categories.NewMemoryRepository()
		prodRepo = products.NewMemoryRepository()
		orderRepo = orders.NewMemoryRepository()
	}

	var photos products.PhotoStore = storage.NewMemoryStorage()
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		photos = s
		d.minio = s
	}

	gateway, err := payment.New(cfg.Payment.Provider)
	if err != nil {
		return nil, err
	}

	d.services = handlers.Services{
		Users:      users.NewService(userRepo),
		Categories: categories.NewService(catRepo),
		Products:   products.NewService(prodRepo, catRepo, photos),
		Orders:     orders.NewService(orderRepo, prodRepo, userRepo, gateway),
		Blacklist:  tokens.NewBlacklist(d.redis),
	}
	return d, nil
}

func newRouter(cfg *config.Config, d *deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), middleware.RequestID(), middleware.RequestLogger())

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.IdentifyCaller(cfg))
		if cfg.RateLimit.UseRedis && d.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when every configured dependency answers
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		checks := map[string]bool{}
		if cfg.MongoDB.URI != "" {
			checks["mongodb"] = d.mongo != nil && d.mongo.Ping(ctx, nil) == nil
			ready = ready && checks["mongodb"]
		}
		if cfg.Redis.Host != "" {
			checks["redis"] = d.redis != nil && d.redis.Ping(ctx).Err() == nil
			ready = ready && checks["redis"]
		}
		if cfg.MinIO.Endpoint != "" {
			checks["minio"] = d.minio != nil && d.minio.Ping(ctx) == nil
			ready = ready && checks["minio"]
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": checks, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)
	handlers.RegisterAPI(r.Group("/api/v1"), cfg, d.services)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
