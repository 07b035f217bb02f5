package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mrdon/kioskd/internal/playback"
)

// Command names accepted by POST /commands.
const (
	CommandTogglePause = "toggle_pause"
	CommandNext        = "next"
	CommandPrevious    = "previous"
)

// CommandsHandler turns manual navigation commands into playback events.
type CommandsHandler struct {
	deps Dependencies
}

// NewCommandsHandler creates a new commands handler.
func NewCommandsHandler(deps Dependencies) *CommandsHandler {
	return &CommandsHandler{deps: deps}
}

type commandRequest struct {
	Command string `json:"command"`
}

// HandlePostCommand handles POST /commands.
func (h *CommandsHandler) HandlePostCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid JSON body", ErrBadRequest))
		return
	}

	var event playback.Event
	switch req.Command {
	case CommandTogglePause:
		event = playback.TogglePause{}
	case CommandNext:
		event = playback.ManualNext{}
	case CommandPrevious:
		event = playback.ManualPrevious{}
	default:
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: unknown command %q", ErrBadRequest, req.Command))
		return
	}

	if ok := h.deps.Enqueue(r.Context(), event); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}

	// The command metric is recorded by the state machine when the
	// transition actually applies, not here at enqueue time.
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
