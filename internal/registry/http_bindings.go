package registry

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/tether/internal/model"
)

// handleRegisterBinding handles POST /v1/bindings. The response carries the
// plaintext secret; it is not retrievable afterwards.
func (s *Service) handleRegisterBinding(w http.ResponseWriter, r *http.Request) {
	var in RegisterBindingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b, secret, err := s.RegisterBinding(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"binding": b,
		"secret":  secret,
	})
}

// handleListBindings handles GET /v1/bindings.
func (s *Service) handleListBindings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.BindingFilter{
		AccountID: q.Get("account_id"),
		TypeID:    q.Get("type_id"),
	}
	if v := q.Get("include_inactive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IncludeInactive = b
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	bindings, total, err := s.ListBindings(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Ensure bindings is never null in JSON output.
	if bindings == nil {
		bindings = []*model.DataSourceBinding{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bindings": bindings,
		"total":    total,
	})
}

// handleGetBinding handles GET /v1/bindings/{id}.
func (s *Service) handleGetBinding(w http.ResponseWriter, r *http.Request) {
	b, err := s.GetBinding(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleUpdateBinding handles PATCH /v1/bindings/{id}.
func (s *Service) handleUpdateBinding(w http.ResponseWriter, r *http.Request) {
	var in UpdateBindingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b, err := s.UpdateBinding(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// handleDeleteBinding handles DELETE /v1/bindings/{id}.
func (s *Service) handleDeleteBinding(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteBinding(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRotateCredential handles POST /v1/bindings/{id}/rotate. The response
// carries the new plaintext secret exactly once.
func (s *Service) handleRotateCredential(w http.ResponseWriter, r *http.Request) {
	b, secret, err := s.RotateCredential(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"binding": b,
		"secret":  secret,
	})
}

// handleVerifyCredential handles POST /v1/bindings/{id}/verify.
func (s *Service) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ok, err := s.VerifyCredential(r.Context(), r.PathValue("id"), in.Secret)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})
}

// handleEnableBinding handles POST /v1/bindings/{id}/enable.
func (s *Service) handleEnableBinding(w http.ResponseWriter, r *http.Request) {
	b, err := s.EnableBinding(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleDisableBinding handles POST /v1/bindings/{id}/disable.
func (s *Service) handleDisableBinding(w http.ResponseWriter, r *http.Request) {
	b, err := s.DisableBinding(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleEffectiveConfig handles GET /v1/bindings/{id}/config.
func (s *Service) handleEffectiveConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.EffectiveConfig(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
