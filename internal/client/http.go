package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/overlay"
)

// HTTPClient implements TetherClient using the tether HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient targets the service at baseURL, for example
// "http://localhost:8080". A non-empty token is sent as a Bearer
// Authorization header on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close exists to satisfy TetherClient; plain HTTP has nothing to tear down.
func (c *HTTPClient) Close() error { return nil }

// --- Connector types ---

func (c *HTTPClient) RegisterType(ctx context.Context, req *RegisterTypeRequest) (*model.ConnectorType, error) {
	var ct model.ConnectorType
	if err := c.doJSON(ctx, http.MethodPost, "/v1/connector-types", req, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

func (c *HTTPClient) GetType(ctx context.Context, id string) (*model.ConnectorType, error) {
	var ct model.ConnectorType
	if err := c.doJSON(ctx, http.MethodGet, "/v1/connector-types/"+url.PathEscape(id), nil, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

func (c *HTTPClient) ListTypes(ctx context.Context, req *ListTypesRequest) (*ListTypesResponse, error) {
	q := url.Values{}
	if req.Mode != "" {
		q.Set("mode", req.Mode)
	}
	if req.Tag != "" {
		q.Set("tag", req.Tag)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/connector-types"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListTypesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateType(ctx context.Context, id string, req *UpdateTypeRequest) (*model.ConnectorType, error) {
	var ct model.ConnectorType
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/connector-types/"+url.PathEscape(id), req, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// --- Bindings ---

func (c *HTTPClient) RegisterBinding(ctx context.Context, req *RegisterBindingRequest) (*BindingWithSecret, error) {
	var resp BindingWithSecret
	if err := c.doJSON(ctx, http.MethodPost, "/v1/bindings", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetBinding(ctx context.Context, id string) (*model.DataSourceBinding, error) {
	var b model.DataSourceBinding
	if err := c.doJSON(ctx, http.MethodGet, "/v1/bindings/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) ListBindings(ctx context.Context, req *ListBindingsRequest) (*ListBindingsResponse, error) {
	q := url.Values{}
	if req.AccountID != "" {
		q.Set("account_id", req.AccountID)
	}
	if req.TypeID != "" {
		q.Set("type_id", req.TypeID)
	}
	if req.IncludeInactive {
		q.Set("include_inactive", "true")
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/bindings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListBindingsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateBinding(ctx context.Context, id string, req *UpdateBindingRequest) (*model.DataSourceBinding, error) {
	var b model.DataSourceBinding
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/bindings/"+url.PathEscape(id), req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) DeleteBinding(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/bindings/"+url.PathEscape(id), nil, nil)
}

// --- Credentials and lifecycle ---

func (c *HTTPClient) RotateCredential(ctx context.Context, id string) (*BindingWithSecret, error) {
	var resp BindingWithSecret
	if err := c.doJSON(ctx, http.MethodPost, "/v1/bindings/"+url.PathEscape(id)+"/rotate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) VerifyCredential(ctx context.Context, id, secret string) (bool, error) {
	body := map[string]string{"secret": secret}
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/bindings/"+url.PathEscape(id)+"/verify", body, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *HTTPClient) EnableBinding(ctx context.Context, id string) (*model.DataSourceBinding, error) {
	var b model.DataSourceBinding
	if err := c.doJSON(ctx, http.MethodPost, "/v1/bindings/"+url.PathEscape(id)+"/enable", nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) DisableBinding(ctx context.Context, id string) (*model.DataSourceBinding, error) {
	var b model.DataSourceBinding
	if err := c.doJSON(ctx, http.MethodPost, "/v1/bindings/"+url.PathEscape(id)+"/disable", nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// --- Effective configuration ---

func (c *HTTPClient) EffectiveConfig(ctx context.Context, id string) (*overlay.EffectiveConfig, error) {
	var cfg overlay.EffectiveConfig
	if err := c.doJSON(ctx, http.MethodGet, "/v1/bindings/"+url.PathEscape(id)+"/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// --- Config schemas ---

func (c *HTTPClient) PublishSchema(ctx context.Context, req *PublishSchemaRequest) (*model.ConfigSchema, error) {
	var cs model.ConfigSchema
	if err := c.doJSON(ctx, http.MethodPost, "/v1/config-schemas", req, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (c *HTTPClient) GetSchema(ctx context.Context, id string) (*model.ConfigSchema, error) {
	var cs model.ConfigSchema
	if err := c.doJSON(ctx, http.MethodGet, "/v1/config-schemas/"+url.PathEscape(id), nil, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (c *HTTPClient) ListSchemas(ctx context.Context, typeID string) ([]*model.ConfigSchema, error) {
	var resp struct {
		Schemas []*model.ConfigSchema `json:"schemas"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/connector-types/"+url.PathEscape(typeID)+"/schemas", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Schemas, nil
}

func (c *HTTPClient) DeleteSchema(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/config-schemas/"+url.PathEscape(id), nil, nil)
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON sends one request and decodes the JSON response into result.
// A nil body sends no payload; a nil result discards the response.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, result any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// apiError extracts the {"error": ...} message, falling back to the raw body.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(body))
	var wire struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Error != "" {
		msg = wire.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
