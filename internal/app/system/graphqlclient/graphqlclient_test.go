package graphqlclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestEndpointIsFixed(t *testing.T) {
	t.Setenv("GRAPHQL_URL", "http://example.com/graphql")
	t.Setenv("BACKEND_URL", "http://example.com")

	c := New(nil, zap.NewNop())
	if c.Endpoint() != "http://localhost:4000/graphql" {
		t.Errorf("Endpoint: got %q", c.Endpoint())
	}
}

func TestRun_SendsToEndpoint(t *testing.T) {
	var gotURL string
	var gotBody struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}

	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		return jsonResponse(`{"data":{"me":{"email":"a@example.com"}}}`), nil
	})}

	c := New(hc, zap.NewNop())

	var resp struct {
		Me struct {
			Email string `json:"email"`
		} `json:"me"`
	}
	err := c.Run(context.Background(), `query($id: ID!) { me(id: $id) { email } }`, map[string]any{"id": "42"}, &resp)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if gotURL != Endpoint {
		t.Errorf("request URL: got %q, want %q", gotURL, Endpoint)
	}
	if gotBody.Variables["id"] != "42" {
		t.Errorf("variables: got %v", gotBody.Variables)
	}
	if resp.Me.Email != "a@example.com" {
		t.Errorf("decoded email: got %q", resp.Me.Email)
	}
}

func TestRun_ReturnsGraphQLError(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(`{"data":null,"errors":[{"message":"not authorized"}]}`), nil
	})}

	c := New(hc, zap.NewNop())
	err := c.Run(context.Background(), `{ me { email } }`, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "not authorized") {
		t.Fatalf("expected graphql error, got %v", err)
	}
}
