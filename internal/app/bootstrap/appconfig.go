// internal/app/bootstrap/appconfig.go
package bootstrap

import "github.com/dalemusser/sasquatch/internal/app/system/appenv"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// The embedded appenv.Config is the environment-derived Configuration
// (APP_SECRET, DB_URL, STRIPE_SECRET_KEY, ...). It is loaded once in
// LoadConfig and passed by value to every later hook, so nothing can
// change it after startup.
//
// The remaining fields are tunables read through WAFFLE's config layer
// (SASQUATCH_* environment variables, config files, flags).
type AppConfig struct {
	appenv.Config

	// MongoDB tunables
	MongoDatabase    string // Database name; derived from DB_URL when blank
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size
}
