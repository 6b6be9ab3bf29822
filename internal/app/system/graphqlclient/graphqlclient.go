// Package graphqlclient constructs the client for the GraphQL API.
//
// The endpoint is fixed; it is not taken from the environment.
package graphqlclient

import (
	"context"
	"net/http"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"
)

// Endpoint is the GraphQL server every client talks to.
const Endpoint = "http://localhost:4000/graphql"

// Client is a GraphQL client bound to Endpoint.
type Client struct {
	gql *graphql.Client
	log *zap.Logger
}

// New returns a client for Endpoint. hc may be nil to use http.DefaultClient.
// Request and response bodies are logged at debug level.
func New(hc *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("graphql")

	var opts []graphql.ClientOption
	if hc != nil {
		opts = append(opts, graphql.WithHTTPClient(hc))
	}
	gql := graphql.NewClient(Endpoint, opts...)
	gql.Log = func(s string) { logger.Debug(s) }

	return &Client{gql: gql, log: logger}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string { return Endpoint }

// Run executes query with vars and decodes the data field into resp.
// resp may be nil to discard the data. The first GraphQL error, if any,
// is returned.
func (c *Client) Run(ctx context.Context, query string, vars map[string]any, resp any) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	if err := c.gql.Run(ctx, req, resp); err != nil {
		c.log.Warn("graphql request failed", zap.Error(err))
		return err
	}
	return nil
}
