package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sasquatch/internal/app/features/health"
	"github.com/dalemusser/sasquatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context, *readpref.ReadPref) error { return f.err }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error"`
	Clients  struct {
		Stripe  string `json:"stripe"`
		GraphQL string `json:"graphql"`
		Uploads string `json:"uploads"`
	} `json:"clients"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

func TestServe_OK(t *testing.T) {
	h := health.NewHandler(fakePinger{}, health.Backends{
		StripeAPIVersion: "2023-10-16",
		GraphQLEndpoint:  "http://localhost:4000/graphql",
	}, zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if resp.Status != "ok" || resp.Database != "connected" {
		t.Errorf("unexpected body: %+v", resp)
	}
	if resp.Clients.Stripe != "2023-10-16" {
		t.Errorf("stripe: got %q", resp.Clients.Stripe)
	}
	if resp.Clients.Uploads != "disabled" {
		t.Errorf("uploads: got %q", resp.Clients.Uploads)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	h := health.NewHandler(fakePinger{err: errors.New("no reachable servers")}, health.Backends{}, zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if resp.Status != "error" || resp.Database != "disconnected" {
		t.Errorf("unexpected body: %+v", resp)
	}
	if resp.Error != "no reachable servers" {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestServe_NoDatabase(t *testing.T) {
	rec, _ := serve(t, health.NewHandler(nil, health.Backends{}, zap.NewNop()))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), health.Backends{}, zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if resp.Database != "connected" {
		t.Errorf("database: got %q", resp.Database)
	}
}
