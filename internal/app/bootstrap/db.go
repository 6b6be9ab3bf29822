// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/sasquatch/internal/app/system/graphqlclient"
	"github.com/dalemusser/sasquatch/internal/app/system/indexes"
	"github.com/dalemusser/sasquatch/internal/app/system/payments"
	"github.com/dalemusser/sasquatch/internal/app/system/timeouts"
	"github.com/dalemusser/sasquatch/internal/app/system/uploads"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ErrNoDatabaseURL is returned by ConnectDB when DB_URL is not set.
var ErrNoDatabaseURL = errors.New("DB_URL is not set")

// ConnectDB builds every back-end handle the app needs.
//
// The Stripe client is constructed first; it performs no I/O. MongoDB is
// dialed and pinged within timeouts.Long, and a failure is returned so
// startup stops instead of serving without a database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	pay, err := payments.New(appCfg.StripeSecretKey, logger)
	if err != nil {
		logger.Error("payment client init failed", zap.Error(err))
		return DBDeps{}, err
	}

	client, err := connectMongo(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}

	store, err := uploads.FromConfig(ctx, appCfg.Config, logger)
	if err != nil {
		logger.Error("upload store init failed", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Payments:      pay,
		GraphQL:       graphqlclient.New(nil, logger),
		Uploads:       store,
	}, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, error) {
	if appCfg.DatabaseURL == "" {
		logger.Error("database connection failed", zap.Error(ErrNoDatabaseURL))
		return nil, ErrNoDatabaseURL
	}

	connectCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "mongo connect")
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.DatabaseURL).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetServerSelectionTimeout(timeouts.Long())

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Error("MongoDB ping failed", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))
	return client, nil
}

// EnsureSchema reconciles MongoDB indexes, including the unique index on
// users.email.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	return nil
}
