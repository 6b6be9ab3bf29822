// Package payments constructs the Stripe API client.
package payments

import (
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// APIVersion is the Stripe API version every request is pinned to.
// stripe-go sends the version it was generated against, so New refuses to
// build a client if the linked library disagrees.
const APIVersion = "2023-10-16"

var (
	// ErrMissingSecretKey is returned by New when no secret key is supplied.
	ErrMissingSecretKey = errors.New("stripe secret key is required")
	// ErrAPIVersionMismatch means the linked stripe-go pins a different version.
	ErrAPIVersionMismatch = errors.New("stripe-go API version does not match pinned version " + APIVersion)
)

// Client wraps the Stripe API handle with the key it was built from.
type Client struct {
	API *client.API
	key string
}

// Option customizes backend construction.
type Option func(*stripe.BackendConfig)

// WithHTTPClient sets the HTTP client used by every Stripe backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *stripe.BackendConfig) { c.HTTPClient = hc }
}

// WithMaxNetworkRetries overrides stripe-go's default retry count.
func WithMaxNetworkRetries(n int64) Option {
	return func(c *stripe.BackendConfig) { c.MaxNetworkRetries = stripe.Int64(n) }
}

// New builds a Stripe client for secretKey. No network call is made.
func New(secretKey string, logger *zap.Logger, opts ...Option) (*Client, error) {
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}
	if stripe.APIVersion != APIVersion {
		return nil, ErrAPIVersionMismatch
	}

	// GetBackendWithConfig fills in defaults on the config it is handed,
	// so each backend needs its own copy.
	newConfig := func() *stripe.BackendConfig {
		c := &stripe.BackendConfig{
			LeveledLogger: leveledLogger(logger),
		}
		for _, o := range opts {
			o(c)
		}
		return c
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, newConfig()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, newConfig()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, newConfig()),
	}

	return &Client{
		API: client.New(secretKey, backends),
		key: secretKey,
	}, nil
}

// APIVersion reports the pinned Stripe API version.
func (c *Client) APIVersion() string { return APIVersion }

// Key returns the secret key the client authenticates with.
func (c *Client) Key() string { return c.key }

// leveledLogger adapts zap to stripe.LeveledLoggerInterface. The sugared
// logger already has Debugf/Infof/Warnf/Errorf.
func leveledLogger(logger *zap.Logger) stripe.LeveledLoggerInterface {
	if logger == nil {
		return &stripe.LeveledLogger{Level: stripe.LevelNull}
	}
	return logger.Named("stripe").Sugar()
}
