package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-relay/internal/command"
)

// SourceAPI identifies commands submitted through the local API.
const SourceAPI = "api"

// CommandRequest is the body of POST /api/v1/commands.
type CommandRequest struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	Param   string `json:"param"`
}

// CommandInfo describes one entry of the command catalogue.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// handleListCommands returns the command catalogue.
func (s *Server) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	cmds := s.executor.Registry().Commands()
	out := make([]CommandInfo, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, CommandInfo{Name: c.Name, Description: c.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"commands": out,
		"count":    len(out),
	})
}

// handleExecuteCommand runs one command and responds with its result.
//
// The response is written and flushed from the delivery callback, which
// runs before a terminal intent is applied.
func (s *Server) handleExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	// Names match exactly, as on MQTT and NATS; only "" is refused here.
	if req.Command == "" {
		writeValidationError(w, "command is required")
		return
	}

	inv := command.Invocation{
		ID:     req.ID,
		Source: SourceAPI,
		Name:   req.Command,
		Param:  req.Param,
	}

	delivered := false
	_, err := s.executor.Run(r.Context(), inv, func(res command.Result) {
		delivered = true
		writeJSON(w, http.StatusOK, res)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	})

	switch {
	case err == nil:
		if !delivered {
			writeInternalError(w, "command produced no result")
		}
	case errors.Is(err, command.ErrHalted):
		writeUnavailable(w, "node is restarting")
	case errors.Is(err, command.ErrEmptyName):
		writeValidationError(w, "command is required")
	default:
		s.logger.Error("command failed", "command", req.Command, "error", err)
		if !delivered {
			writeInternalError(w, "command failed")
		}
	}
}
