// internal/app/features/uploads/handler.go
package uploads

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/sasquatch/internal/app/system/timeouts"
	uploadstore "github.com/dalemusser/sasquatch/internal/app/system/uploads"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxUploadBytes caps a single upload.
const MaxUploadBytes = 10 << 20

// Handler accepts file uploads and hands them to the configured store.
type Handler struct {
	Store storage.Store
	Log   *zap.Logger
}

// NewHandler creates an upload handler. store may be nil, in which case
// uploads are rejected with 503.
func NewHandler(store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Log: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ServeUpload handles POST /uploads with a multipart "file" field.
//
//	201 { "url": "...", "key": "..." }
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "uploads are not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `missing "file" field`})
		return
	}
	defer file.Close()

	if header.Size > MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
		return
	}

	key := uploadstore.NewKey(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.DetectContentType(key, nil)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "upload")
	defer cancel()

	if err := h.Store.Put(ctx, key, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.Log.Error("upload failed", zap.String("key", key), zap.String("store", h.Store.Backend()), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upload failed"})
		return
	}

	h.Log.Info("file uploaded",
		zap.String("key", key),
		zap.String("store", h.Store.Backend()),
		zap.Int64("size", header.Size))
	writeJSON(w, http.StatusCreated, map[string]string{"url": h.Store.URL(key), "key": key})
}

// ServeFile handles GET /uploads/{key} for backends without public URLs of
// their own. Only single stored objects are served; directories and
// listings are 404.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" || strings.HasSuffix(key, "/") || storage.ValidatePath(key) != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "upload get")
	defer cancel()

	// Head reports directories as not found.
	info, err := h.Store.Head(ctx, key)
	if err != nil {
		h.fileError(w, r, key, err)
		return
	}
	rc, err := h.Store.Get(ctx, key)
	if err != nil {
		h.fileError(w, r, key, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("upload download interrupted", zap.String("key", key), zap.Error(err))
	}
}

func (h *Handler) fileError(w http.ResponseWriter, r *http.Request, key string, err error) {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath) {
		http.NotFound(w, r)
		return
	}
	h.Log.Error("upload read failed", zap.String("key", key), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
