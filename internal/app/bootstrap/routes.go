// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	healthfeature "github.com/dalemusser/sasquatch/internal/app/features/health"
	registerfeature "github.com/dalemusser/sasquatch/internal/app/features/register"
	uploadsfeature "github.com/dalemusser/sasquatch/internal/app/features/uploads"
	userstore "github.com/dalemusser/sasquatch/internal/app/store/users"
	"github.com/dalemusser/sasquatch/internal/app/system/ratelimit"
	"github.com/dalemusser/sasquatch/internal/app/system/regtoken"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The router carries:
//   - CORS for FRONTEND_URL, when set
//   - /health: database ping and back-end summary
//   - /register: email registration with signed, expiring tokens
//   - /uploads: file upload to S3 or LOCAL_UPLOAD_DIR
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.MongoDatabase == nil {
		return nil, errors.New("build handler: no MongoDB database")
	}

	issuer, err := regtoken.NewIssuer(appCfg.AppSecret, appCfg.RegisterExpiration())
	if err != nil {
		logger.Error("registration token issuer init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	if origin := strings.TrimRight(appCfg.FrontendURL, "/"); origin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{origin},
			AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check endpoint for load balancers and orchestrators
	backends := healthfeature.Backends{GraphQLEndpoint: deps.GraphQL.Endpoint()}
	if deps.Payments != nil {
		backends.StripeAPIVersion = deps.Payments.APIVersion()
	}
	if deps.Uploads != nil {
		backends.UploadStore = deps.Uploads.Backend()
	}
	var pinger healthfeature.Pinger
	if deps.MongoClient != nil {
		pinger = deps.MongoClient
	}
	healthHandler := healthfeature.NewHandler(pinger, backends, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration
	users := userstore.New(deps.MongoDatabase)
	registerHandler := registerfeature.NewHandler(users, issuer, logger)
	registerHandler.Limit = ratelimit.NewRegisterLimiter()
	go registerHandler.Limit.Run(context.Background(), 5*time.Minute)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	// Uploads
	uploadsHandler := uploadsfeature.NewHandler(deps.Uploads, logger)
	r.Mount("/uploads", uploadsfeature.Routes(uploadsHandler))

	return r, nil
}
