package registry

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/tether/internal/model"
)

// handleRegisterType handles POST /v1/connector-types.
func (s *Service) handleRegisterType(w http.ResponseWriter, r *http.Request) {
	var in RegisterTypeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ct, err := s.RegisterType(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ct)
}

// handleListTypes handles GET /v1/connector-types.
func (s *Service) handleListTypes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.TypeFilter{
		Mode: model.ManagementMode(q.Get("mode")),
		Tag:  q.Get("tag"),
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

	types, total, err := s.ListTypes(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Ensure types is never null in JSON output.
	if types == nil {
		types = []*model.ConnectorType{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"connector_types": types,
		"total":           total,
	})
}

// handleGetType handles GET /v1/connector-types/{id}.
func (s *Service) handleGetType(w http.ResponseWriter, r *http.Request) {
	ct, err := s.GetType(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ct)
}

// handleUpdateType handles PATCH /v1/connector-types/{id}.
func (s *Service) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	var in UpdateTypeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ct, err := s.UpdateType(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ct)
}
