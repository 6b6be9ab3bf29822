// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/sasquatch/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after DB connections and schema setup are complete, before
// the HTTP handler is built. It logs the effective settings with secrets
// masked.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	red := appCfg.Redacted()

	uploadKind := "disabled"
	if deps.Uploads != nil {
		uploadKind = deps.Uploads.Backend()
	}

	t := timeouts.Current()
	logger.Info("sasquatch configuration",
		zap.String("env", coreCfg.Env),
		zap.String("app_secret", red.AppSecret),
		zap.Int("register_expiration_seconds", red.RegisterExpirationSeconds),
		zap.String("frontend_url", red.FrontendURL),
		zap.String("backend_url", red.BackendURL),
		zap.String("bucket_name", red.BucketName),
		zap.String("local_upload_dir", red.LocalUploadDir),
		zap.String("db_url", red.DatabaseURL),
		zap.String("mongo_database", appCfg.MongoDatabase),
		zap.String("stripe_secret_key", red.StripeSecretKey),
		zap.String("stripe_api_version", deps.Payments.APIVersion()),
		zap.String("graphql_endpoint", deps.GraphQL.Endpoint()),
		zap.String("uploads", uploadKind),
		zap.Duration("timeout_ping", t.Ping),
		zap.Duration("timeout_long", t.Long),
	)
	return nil
}
