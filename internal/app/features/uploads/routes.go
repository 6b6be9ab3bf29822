// internal/app/features/uploads/routes.go
package uploads

import "github.com/go-chi/chi/v5"

// Routes returns the router mounted under /uploads. Objects in backends
// without their own public URLs (local disk) are also served from here.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeUpload)
	if h.Store != nil && h.Store.Backend() != "s3" {
		r.Get("/*", h.ServeFile)
	}
	return r
}
