package api

import (
	"net/http"

	"github.com/mrdon/kioskd/internal/domain/types"
)

// SlidesHandler serves the normalized slide population.
type SlidesHandler struct {
	deps Dependencies
}

// NewSlidesHandler creates a new population listing handler.
func NewSlidesHandler(deps Dependencies) *SlidesHandler {
	return &SlidesHandler{deps: deps}
}

type slidesResponse struct {
	Count  int                  `json:"count"`
	Slides []types.SlideSummary `json:"slides"`
}

// HandleGetSlides handles GET /slides.
func (h *SlidesHandler) HandleGetSlides(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	slides := h.deps.Slides(r.Context())
	if slides == nil {
		slides = []types.SlideSummary{}
	}

	writeJSON(w, http.StatusOK, slidesResponse{Count: len(slides), Slides: slides})
}
