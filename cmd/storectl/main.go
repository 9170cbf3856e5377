// Command storectl performs account administration against the storefront database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ecomapp/storefront/internal/config"
	"github.com/ecomapp/storefront/internal/database"
	"github.com/ecomapp/storefront/internal/users"
	"github.com/ecomapp/storefront/pkg/logger"
)

// openFunc returns the user service and a cleanup to run when the command ends.
type openFunc func(ctx context.Context) (*users.Service, func(), error)

func openMongo(ctx context.Context) (*users.Service, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.MongoDB.URI == "" {
		return nil, nil, fmt.Errorf("MONGODB_URI is not set")
	}
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3, func(attempt int, err error) {
		logger.Warnf("attempt %d: failed to connect to MongoDB: %v", attempt, err)
	})
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Warnf("ensure indexes: %v", err)
	}
	svc := users.NewService(users.NewMongoUserRepository(db.Collection(database.ColUsers)))
	return svc, func() { _ = client.Disconnect(context.Background()) }, nil
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()
	if err := newRootCmd(openMongo).Execute(); err != nil {
		os.Exit(1)
	}
}
