package api

import (
	"errors"
	"net/http"

	repository "github.com/mrdon/kioskd/internal/adapters/repository"
)

// CurrentHandler serves the slide the display should be showing right now.
type CurrentHandler struct {
	deps Dependencies
}

// NewCurrentHandler creates a new current-slide handler.
func NewCurrentHandler(deps Dependencies) *CurrentHandler {
	return &CurrentHandler{deps: deps}
}

// HandleGetCurrent handles GET /current.
func (h *CurrentHandler) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	current, err := h.deps.Current(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoSlide) {
			writeError(w, http.StatusNotFound, "no_slide", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusOK, current)
}
