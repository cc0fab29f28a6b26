// Package http exposes the hash generator and the configuration store over
// a local JSON API.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/PassHash/internal/service"
)

// HashDeriver defines the hashing operation required by HashHandler.
type HashDeriver interface {
	Derive(req service.HashRequest) service.HashResult
}

// HashHandler handles hash derivation requests.
type HashHandler struct {
	HashService HashDeriver
}

// Hash handles POST /api/hash. It decodes a service.HashRequest and
// responds with the raw and formatted obfuscated hash.
func (h *HashHandler) Hash(w http.ResponseWriter, r *http.Request) {
	var req service.HashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.HashService.Derive(req))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
