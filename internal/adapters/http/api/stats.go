package api

import "net/http"

// StatsProvider exposes runtime statistics from the rotation service.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves service statistics for monitoring.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
