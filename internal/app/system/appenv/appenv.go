// Package appenv loads the process Configuration from environment variables.
//
// Load is called once during startup, before any backend client is built.
// The returned Config is a plain value: callers receive copies and nothing
// in the process mutates it after load.
//
// Environment variables:
//   - APP_SECRET: token signing secret (default "SASQUATCH")
//   - FRONTEND_URL: browser origin of the front end
//   - BACKEND_URL: public base URL of this service
//   - BUCKET_NAME: object storage bucket for uploads
//   - LOCAL_UPLOAD_DIR: directory for uploads when no bucket is configured
//   - DB_URL: MongoDB connection string
//   - STRIPE_SECRET_KEY: Stripe API key (required)
package appenv

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// DefaultAppSecret is used when APP_SECRET is unset or empty.
	DefaultAppSecret = "SASQUATCH"

	// RegisterExpirationSeconds is the lifetime of a registration token.
	// It is fixed and not read from the environment.
	RegisterExpirationSeconds = 3600

	// StripeSecretKeyVar names the one required variable.
	StripeSecretKeyVar = "STRIPE_SECRET_KEY"
)

// ErrMissingStripeSecretKey is returned when STRIPE_SECRET_KEY is unset or empty.
var ErrMissingStripeSecretKey = errors.New("missing required secret " + StripeSecretKeyVar)

// Config holds the environment-derived settings for the process.
type Config struct {
	AppSecret                 string `envconfig:"APP_SECRET" default:"SASQUATCH"`
	RegisterExpirationSeconds int    `ignored:"true"`
	FrontendURL               string `envconfig:"FRONTEND_URL"`
	BackendURL                string `envconfig:"BACKEND_URL"`
	BucketName                string `envconfig:"BUCKET_NAME"`
	LocalUploadDir            string `envconfig:"LOCAL_UPLOAD_DIR"`
	DatabaseURL               string `envconfig:"DB_URL"`
	StripeSecretKey           string `envconfig:"STRIPE_SECRET_KEY"`
}

// Load reads the process environment into a Config.
//
// Defaults apply when a variable is absent or set to the empty string.
// The only validation is the presence of STRIPE_SECRET_KEY; without it
// Load returns ErrMissingStripeSecretKey and startup must not continue.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}

	// envconfig only applies defaults to unset variables.
	if cfg.AppSecret == "" {
		cfg.AppSecret = DefaultAppSecret
	}
	cfg.RegisterExpirationSeconds = RegisterExpirationSeconds

	if cfg.StripeSecretKey == "" {
		return Config{}, ErrMissingStripeSecretKey
	}
	return cfg, nil
}

// RegisterExpiration returns the registration token lifetime.
func (c Config) RegisterExpiration() time.Duration {
	return time.Duration(c.RegisterExpirationSeconds) * time.Second
}

// Redacted returns a copy that is safe to log.
func (c Config) Redacted() Config {
	out := c
	out.AppSecret = mask(c.AppSecret)
	out.StripeSecretKey = mask(c.StripeSecretKey)
	out.DatabaseURL = maskURL(c.DatabaseURL)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// maskURL hides the password in a connection string. Unparseable values
// are masked entirely.
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
