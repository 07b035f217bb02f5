package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mrdon/kioskd/internal/playback"
)

// TokenHandler manages the deep-link navigation token.
type TokenHandler struct {
	deps Dependencies
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(deps Dependencies) *TokenHandler {
	return &TokenHandler{deps: deps}
}

type tokenRequest struct {
	Token string `json:"token"`
}

// HandleToken handles PUT /token (lock the display on a slug) and
// DELETE /token (release the lock and resume rotation).
func (h *TokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.handleSet(w, r)
	case http.MethodDelete:
		h.handleClear(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *TokenHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid JSON body", ErrBadRequest))
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: token must not be empty", ErrBadRequest))
		return
	}

	if ok := h.deps.Enqueue(r.Context(), playback.TokenSet{Token: req.Token}); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}

	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

func (h *TokenHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	if ok := h.deps.Enqueue(r.Context(), playback.TokenCleared{}); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}

	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
