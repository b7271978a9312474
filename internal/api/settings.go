package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-relay/internal/settings"
)

// maskedValue replaces network-scoped values on read.
const maskedValue = "********"

// SettingRequest is the body of PUT /api/v1/settings/{key}.
type SettingRequest struct {
	Value string         `json:"value"`
	Scope settings.Scope `json:"scope"`
}

func maskSetting(s settings.Setting) settings.Setting {
	if s.Scope == settings.ScopeNetwork {
		s.Value = maskedValue
	}
	return s
}

// handleListSettings returns every stored setting.
func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeUnavailable(w, "settings store not configured")
		return
	}

	list, err := s.settings.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list settings", "error", err)
		writeInternalError(w, "failed to list settings")
		return
	}

	out := make([]settings.Setting, 0, len(list))
	for _, st := range list {
		out = append(out, maskSetting(st))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": out,
		"count":    len(out),
	})
}

// handleGetSetting returns one setting.
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeUnavailable(w, "settings store not configured")
		return
	}

	key := chi.URLParam(r, "key")
	st, err := s.settings.Get(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrNotFound):
			writeNotFound(w, "setting not found")
		case errors.Is(err, settings.ErrInvalidKey):
			writeValidationError(w, "invalid key")
		default:
			s.logger.Error("failed to get setting", "key", key, "error", err)
			writeInternalError(w, "failed to get setting")
		}
		return
	}
	writeJSON(w, http.StatusOK, maskSetting(*st))
}

// handlePutSetting stores one setting. Scope defaults to device.
func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeUnavailable(w, "settings store not configured")
		return
	}

	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Scope == "" {
		req.Scope = settings.ScopeDevice
	}
	if !req.Scope.Valid() {
		writeValidationError(w, "scope must be device or network")
		return
	}

	key := chi.URLParam(r, "key")
	if err := s.settings.Set(r.Context(), key, req.Value, req.Scope); err != nil {
		switch {
		case errors.Is(err, settings.ErrInvalidKey):
			writeValidationError(w, "invalid key")
		case errors.Is(err, settings.ErrInvalidScope):
			writeValidationError(w, "scope must be device or network")
		default:
			s.logger.Error("failed to store setting", "key", key, "error", err)
			writeInternalError(w, "failed to store setting")
		}
		return
	}

	s.logger.Info("setting updated", "key", key, "scope", string(req.Scope))
	w.WriteHeader(http.StatusNoContent)
}
