// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/sasquatch/internal/app/system/appenv"
	"github.com/dalemusser/sasquatch/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// DefaultMongoDatabase is used when neither SASQUATCH_MONGO_DATABASE nor the
// DB_URL path names a database.
const DefaultMongoDatabase = "sasquatch"

// appConfigKeys are the WAFFLE-managed tunables. They are loaded with the
// SASQUATCH_ prefix (SASQUATCH_MONGO_MAX_POOL_SIZE, ...); the Configuration
// variables themselves are read unprefixed by appenv.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_database", Default: "", Desc: "MongoDB database name (blank: taken from DB_URL)"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 0, Desc: "MongoDB min connection pool size (default: 0)"},
}

// LoadConfig loads WAFFLE core config and the app Configuration.
//
// WAFFLE's loader merges a .env file into the environment (real variables
// win), so it must run before appenv.Load. If STRIPE_SECRET_KEY is missing
// the error is returned here and startup stops before any client is
// constructed.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SASQUATCH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	envCfg, err := appenv.Load()
	if err != nil {
		logger.Error("configuration load failed", zap.Error(err))
		return nil, AppConfig{}, err
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("count", n))
	}

	appCfg := newAppConfig(envCfg,
		appValues.String("mongo_database"),
		appValues.Int("mongo_max_pool_size"),
		appValues.Int("mongo_min_pool_size"))

	return coreCfg, appCfg, nil
}

func newAppConfig(envCfg appenv.Config, mongoDB string, maxPool, minPool int) AppConfig {
	if mongoDB == "" {
		mongoDB = databaseFromURI(envCfg.DatabaseURL)
	}
	if mongoDB == "" {
		mongoDB = DefaultMongoDatabase
	}
	if maxPool < 0 {
		maxPool = 0
	}
	if minPool < 0 {
		minPool = 0
	}
	return AppConfig{
		Config:           envCfg,
		MongoDatabase:    mongoDB,
		MongoMaxPoolSize: uint64(maxPool),
		MongoMinPoolSize: uint64(minPool),
	}
}

// databaseFromURI returns the database path segment of a MongoDB URI, e.g.
// "app" for "mongodb://a:27017,b:27017/app?replicaSet=rs0".
func databaseFromURI(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return path
}

// ValidateConfig performs app-specific config validation.
//
// The Stripe key has already been checked by appenv.Load. Here the MongoDB
// URI format is checked when one is set, so a typo fails before dialing.
// A missing DB_URL is reported by ConnectDB.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.StripeSecretKey == "" {
		return appenv.ErrMissingStripeSecretKey
	}
	if appCfg.DatabaseURL != "" {
		if err := wafflemongo.ValidateURI(appCfg.DatabaseURL); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize && appCfg.MongoMaxPoolSize != 0 {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	return nil
}
