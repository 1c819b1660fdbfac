package registry

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alfredjeanlab/tether/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Service) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/connector-types", s.handleRegisterType)
	mux.HandleFunc("GET /v1/connector-types", s.handleListTypes)
	mux.HandleFunc("GET /v1/connector-types/{id}", s.handleGetType)
	mux.HandleFunc("PATCH /v1/connector-types/{id}", s.handleUpdateType)
	mux.HandleFunc("GET /v1/connector-types/{id}/schemas", s.handleListSchemas)
	mux.HandleFunc("POST /v1/bindings", s.handleRegisterBinding)
	mux.HandleFunc("GET /v1/bindings", s.handleListBindings)
	mux.HandleFunc("GET /v1/bindings/{id}", s.handleGetBinding)
	mux.HandleFunc("PATCH /v1/bindings/{id}", s.handleUpdateBinding)
	mux.HandleFunc("DELETE /v1/bindings/{id}", s.handleDeleteBinding)
	mux.HandleFunc("POST /v1/bindings/{id}/rotate", s.handleRotateCredential)
	mux.HandleFunc("POST /v1/bindings/{id}/verify", s.handleVerifyCredential)
	mux.HandleFunc("POST /v1/bindings/{id}/enable", s.handleEnableBinding)
	mux.HandleFunc("POST /v1/bindings/{id}/disable", s.handleDisableBinding)
	mux.HandleFunc("GET /v1/bindings/{id}/config", s.handleEffectiveConfig)
	mux.HandleFunc("POST /v1/config-schemas", s.handlePublishSchema)
	mux.HandleFunc("GET /v1/config-schemas/{id}", s.handleGetSchema)
	mux.HandleFunc("DELETE /v1/config-schemas/{id}", s.handleDeleteSchema)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation *model.ValidationError
		notFound   *model.NotFoundError
		conflict   *model.ConflictError
		integrity  *model.DataIntegrityError
		upstream   *model.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Msg)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Msg)
	case errors.As(err, &integrity):
		writeError(w, http.StatusInternalServerError, integrity.Error())
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, upstream.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// AuthMiddleware wraps an http.Handler and checks the Authorization header for
// a valid Bearer token. When token is empty, auth is disabled and all requests
// pass through. GET /v1/health is always exempt.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Exempt health check.
		if r.Method == http.MethodGet && r.URL.Path == "/v1/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}

		provided := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
