// internal/app/features/register/handler.go
package register

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	userstore "github.com/dalemusser/sasquatch/internal/app/store/users"
	"github.com/dalemusser/sasquatch/internal/app/system/normalize"
	"github.com/dalemusser/sasquatch/internal/app/system/ratelimit"
	"github.com/dalemusser/sasquatch/internal/app/system/regtoken"
	"github.com/dalemusser/sasquatch/internal/app/system/timeouts"
	"github.com/dalemusser/sasquatch/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBody caps request bodies for both endpoints.
const maxBody = 16 << 10

var validate = validator.New()

// Users is the subset of the user store the handlers need.
type Users interface {
	Create(ctx context.Context, email, password string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Handler serves the two-step registration flow: request a token for an
// email, then complete registration with the token and a password.
type Handler struct {
	Users  Users
	Tokens *regtoken.Issuer
	Limit  *ratelimit.RegisterLimiter // optional; nil disables throttling
	Log    *zap.Logger
}

// NewHandler creates a registration handler.
func NewHandler(users Users, tokens *regtoken.Issuer, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Tokens: tokens, Log: logger}
}

type beginRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type beginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type completeRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type completeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// ServeBegin handles POST /register.
//
//	{ "email": "..." } -> 200 { "token": "...", "expires_at": "..." }
//
// Returns 400 for a malformed email, 409 if the email is taken and 429 when
// the client or email is over its request budget.
func (h *Handler) ServeBegin(w http.ResponseWriter, r *http.Request) {
	var req beginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil || !normalize.ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if h.Limit != nil {
		if ok, reason := h.Limit.Check(r, req.Email); !ok {
			h.Log.Warn("register: rate limited", zap.String("ip", ratelimit.ClientIP(r)))
			writeError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	exists, err := h.Users.EmailExists(ctx, req.Email)
	if err != nil {
		h.Log.Error("register: email lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "registration unavailable")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, userstore.ErrDuplicateEmail.Error())
		return
	}

	tok, exp, err := h.Tokens.Issue(req.Email)
	if err != nil {
		h.Log.Error("register: token issue failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "registration unavailable")
		return
	}

	h.Log.Info("registration token issued", zap.String("email", normalize.Email(req.Email)), zap.Time("expires_at", exp))
	writeJSON(w, http.StatusOK, beginResponse{Token: tok, ExpiresAt: exp})
}

// ServeComplete handles POST /register/complete.
//
//	{ "token": "...", "password": "..." } -> 201 { "id": "...", "email": "..." }
//
// Returns 400 for a bad or expired token or a password that is empty or over
// 72 bytes, and 409 if the email was registered in the meantime.
func (h *Handler) ServeComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "token and password are required")
		return
	}

	email, err := h.Tokens.Verify(req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, userstore.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, userstore.ErrEmptyPassword),
		errors.Is(err, userstore.ErrPasswordTooLong),
		errors.Is(err, userstore.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.Log.Error("register: create user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "registration unavailable")
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	writeJSON(w, http.StatusCreated, completeResponse{ID: u.ID.Hex(), Email: u.Email})
}
