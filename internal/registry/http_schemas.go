package registry

import (
	"encoding/json"
	"net/http"

	"github.com/alfredjeanlab/tether/internal/model"
)

// handlePublishSchema handles POST /v1/config-schemas.
func (s *Service) handlePublishSchema(w http.ResponseWriter, r *http.Request) {
	var in PublishSchemaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cs, err := s.PublishSchema(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cs)
}

// handleGetSchema handles GET /v1/config-schemas/{id}.
func (s *Service) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	cs, err := s.GetSchema(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// handleListSchemas handles GET /v1/connector-types/{id}/schemas.
func (s *Service) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := s.ListSchemas(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Ensure schemas is never null in JSON output.
	if schemas == nil {
		schemas = []*model.ConfigSchema{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemas": schemas})
}

// handleDeleteSchema handles DELETE /v1/config-schemas/{id}.
func (s *Service) handleDeleteSchema(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteSchema(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
