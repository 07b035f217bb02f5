// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mrdon/kioskd/internal/domain/types"
	"github.com/mrdon/kioskd/internal/playback"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue pushes a playback event to the single consumer. Returns false
	// on backpressure.
	Enqueue(ctx context.Context, e playback.Event) bool

	// Read operations expose the display state.
	Current(ctx context.Context) (types.Current, error)
	Slides(ctx context.Context) []types.SlideSummary
}

// Server wires HTTP routes for the kiosk control/view API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	currentHandler  *CurrentHandler
	slidesHandler   *SlidesHandler
	commandsHandler *CommandsHandler
	tokenHandler    *TokenHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		currentHandler:  NewCurrentHandler(deps),
		slidesHandler:   NewSlidesHandler(deps),
		commandsHandler: NewCommandsHandler(deps),
		tokenHandler:    NewTokenHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/current", MetricsMiddleware(s.currentHandler.HandleGetCurrent, "current"))
	mux.HandleFunc("/slides", MetricsMiddleware(s.slidesHandler.HandleGetSlides, "slides"))
	mux.HandleFunc("/commands", MetricsMiddleware(s.commandsHandler.HandlePostCommand, "commands"))
	mux.HandleFunc("/token", MetricsMiddleware(s.tokenHandler.HandleToken, "token"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
