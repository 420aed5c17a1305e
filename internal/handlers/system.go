package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Counter reports how many records a store holds.
type Counter interface {
	Len() int
}

// SystemHandler provides the health endpoint.
type SystemHandler struct {
	users Counter
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(u Counter) *SystemHandler {
	return &SystemHandler{users: u}
}

// Routes registers all system routes on the given chi router.
func (h *SystemHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health reports that the process is serving and how many users it holds.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"users":  h.users.Len(),
	})
}
