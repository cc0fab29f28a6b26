package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/PassHash/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the PassHash API under
// /api.
//
// Routes:
//
//	POST   /api/hash               → hashHandler.Hash
//	GET    /api/configs            → configHandler.List
//	POST   /api/configs            → configHandler.Save
//	DELETE /api/configs/{id}       → configHandler.Delete
//	GET    /api/export             → configHandler.Export
//	POST   /api/import             → configHandler.Import
//	GET    /api/export/compressed  → configHandler.ExportCompressed
//	POST   /api/import/compressed  → configHandler.ImportCompressed
//	GET    /api/export/qr          → configHandler.ExportQR
//
// Every request is logged with its request id. Requests with a body must
// be sent as application/json.
func NewRouter(
	hashHandler *HashHandler,
	configHandler *ConfigHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	jsonOnly := chiMiddleware.AllowContentType("application/json")

	r.Route("/api", func(r chi.Router) {
		r.With(jsonOnly).Post("/hash", hashHandler.Hash)

		r.Get("/configs", configHandler.List)
		r.With(jsonOnly).Post("/configs", configHandler.Save)
		r.Delete("/configs/{id}", configHandler.Delete)

		r.Get("/export", configHandler.Export)
		r.Get("/export/compressed", configHandler.ExportCompressed)
		r.Get("/export/qr", configHandler.ExportQR)
		r.With(jsonOnly).Post("/import", configHandler.Import)
		r.With(jsonOnly).Post("/import/compressed", configHandler.ImportCompressed)
	})

	return r
}
