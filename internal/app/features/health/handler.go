package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/sasquatch/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Backends describes the non-database clients built at startup. Empty
// fields are reported as not configured.
type Backends struct {
	StripeAPIVersion string
	GraphQLEndpoint  string
	UploadStore      string
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB       Pinger
	Backends Backends
	Log      *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(db Pinger, backends Backends, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Backends: backends,
		Log:      logger,
	}
}

type healthResponse struct {
	Status   string          `json:"status"`
	Database string          `json:"database"`
	Message  string          `json:"message,omitempty"`
	Error    string          `json:"error,omitempty"`
	Clients  clientsResponse `json:"clients"`
}

type clientsResponse struct {
	Stripe  string `json:"stripe"`
	GraphQL string `json:"graphql"`
	Uploads string `json:"uploads"`
}

func orDisabled(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected",
//	  "clients":{"stripe":"2023-10-16","graphql":"http://localhost:4000/graphql","uploads":"local"} }
//
// On DB failure: 503 with status "error" and database "disconnected".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Clients: clientsResponse{
			Stripe:  orDisabled(h.Backends.StripeAPIVersion),
			GraphQL: orDisabled(h.Backends.GraphQLEndpoint),
			Uploads: orDisabled(h.Backends.UploadStore),
		},
	}

	if h.DB == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database not configured"
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
