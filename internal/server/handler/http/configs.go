package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/PassHash/internal/exchange"
	"github.com/atinyakov/PassHash/internal/models"
	"github.com/atinyakov/PassHash/internal/service"
)

// maxImportBody caps import request bodies.
const maxImportBody = 8 << 20

// ConfigService defines the configuration operations required by
// ConfigHandler.
type ConfigService interface {
	Save(ctx context.Context, nc models.NewConfig) (models.SavedConfig, error)
	List(ctx context.Context) ([]models.SavedConfig, error)
	Delete(ctx context.Context, id string) (bool, error)
	ExportAll(ctx context.Context) (string, error)
	ImportAll(ctx context.Context, data string) (int, error)
	ExportCompressed(ctx context.Context) (string, error)
	ImportCompressed(ctx context.Context, payload string) (int, error)
}

// ConfigHandler handles the saved configuration and exchange endpoints.
type ConfigHandler struct {
	ConfigService ConfigService
	// Now stamps export file names; time.Now when nil.
	Now func() time.Time
}

type importResponse struct {
	Added int `json:"added"`
}

type compressedPayload struct {
	Payload string `json:"payload"`
}

// List handles GET /api/configs.
func (h *ConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.ConfigService.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if configs == nil {
		configs = []models.SavedConfig{}
	}
	writeJSON(w, http.StatusOK, configs)
}

// Save handles POST /api/configs and responds with the stored
// configuration.
func (h *ConfigHandler) Save(w http.ResponseWriter, r *http.Request) {
	var nc models.NewConfig
	if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	cfg, err := h.ConfigService.Save(r.Context(), nc)
	if errors.Is(err, service.ErrEmptyName) ||
		errors.Is(err, service.ErrUnknownAlgorithm) ||
		errors.Is(err, service.ErrUnknownMethod) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// Delete handles DELETE /api/configs/{id}.
func (h *ConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := h.ConfigService.Delete(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, service.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/export, sending the collection as a dated JSON
// attachment.
func (h *ConfigHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.ConfigService.ExportAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exchange.ExportFileName(now())+`"`)
	_, _ = io.WriteString(w, data)
}

// Import handles POST /api/import. The body is the JSON array produced by
// Export.
func (h *ConfigHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	added, err := h.ConfigService.ImportAll(r.Context(), string(body))
	h.writeImport(w, added, err)
}

// ExportCompressed handles GET /api/export/compressed.
func (h *ConfigHandler) ExportCompressed(w http.ResponseWriter, r *http.Request) {
	payload, err := h.ConfigService.ExportCompressed(r.Context())
	if err != nil {
		writeExportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compressedPayload{Payload: payload})
}

// ImportCompressed handles POST /api/import/compressed.
func (h *ConfigHandler) ImportCompressed(w http.ResponseWriter, r *http.Request) {
	var req compressedPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxImportBody)).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	added, err := h.ConfigService.ImportCompressed(r.Context(), req.Payload)
	h.writeImport(w, added, err)
}

// ExportQR handles GET /api/export/qr and renders the compressed export as
// a PNG. The optional size query parameter sets the image edge in pixels.
func (h *ConfigHandler) ExportQR(w http.ResponseWriter, r *http.Request) {
	size := exchange.DefaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 4096 {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		size = n
	}

	payload, err := h.ConfigService.ExportCompressed(r.Context())
	if err != nil {
		writeExportError(w, err)
		return
	}
	png, err := exchange.RenderQR(payload, size)
	if err != nil {
		writeExportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *ConfigHandler) writeImport(w http.ResponseWriter, added int, err error) {
	if errors.Is(err, exchange.ErrInvalidPayload) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Added: added})
}

func writeExportError(w http.ResponseWriter, err error) {
	if errors.Is(err, exchange.ErrPayloadTooLarge) {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
