package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// DefaultBackendURL is used when no backend URL is configured.
const DefaultBackendURL = "http://127.0.0.1:8001"

// APIService makes raw, credentialed HTTP requests to the dashboard API.
//
// Cookies set by the API are kept in the client's jar and sent back on every request.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service for baseURL.
//
// A nil client gets a fresh client with a cookie jar. A client without a jar is copied and given one.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBackendURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c := *client
		c.Jar = jar
		client = &c
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// BaseURL returns the API root all paths are resolved against.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the response has a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Detail returns the "detail" field of a JSON error body, if any.
func (r *APIResponse) Detail() string {
	if m, ok := r.JSONData.(map[string]any); ok {
		if d, ok := m["detail"].(string); ok {
			return d
		}
	}
	return ""
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// SetCookie stores a cookie for the API origin so it is sent on subsequent requests.
func (a *APIService) SetCookie(name, value string) error {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}

	c := &http.Cookie{Name: name, Value: value, Path: "/"}
	if value == "" {
		c.MaxAge = -1
	}
	a.httpClient.Jar.SetCookies(u, []*http.Cookie{c})
	return nil
}

// Cookie returns the value of the named cookie held for the API origin, or "".
func (a *APIService) Cookie(name string) string {
	u, err := url.Parse(a.baseURL + "/")
	if err != nil {
		return ""
	}

	for _, c := range a.httpClient.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
