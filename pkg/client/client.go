// Package client implements the HTTP client for the BugBridge platform
// API, plus a canned in-memory double used for development without a
// backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bugbridge/disclosoor/pkg/config"
	"github.com/sirupsen/logrus"
)

// maxResponseBodyBytes caps how much of a response body is read.
const maxResponseBodyBytes = 1 << 20

// Client performs one HTTP exchange per call against the platform API.
// Implementations attach the bearer credential when one is held and
// classify failures into RequestError (domain) and DecodeError
// (infrastructure).
type Client interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	CurrentUser(ctx context.Context) (*MeResponse, error)
	Logout(ctx context.Context) error

	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id string) (*Company, error)
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyProfile, error)

	ListBugReports(ctx context.Context, userID string) ([]BugReport, error)
	GetBugReport(ctx context.Context, id string) (*BugReport, error)
	CreateBugReport(ctx context.Context, req CreateBugReportRequest) (*BugReport, error)
	UpdateBugReport(ctx context.Context, id string, req UpdateBugReportRequest) (*BugReport, error)

	GetUser(ctx context.Context, id string) (*User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error)

	SetToken(token string)
	Token() string
}

// RequestError is a well-formed error response from the platform. The
// server-supplied message is propagated verbatim.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "request failed"
	}

	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed (%d)", e.StatusCode)
	}

	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// HTTPStatusCode returns the HTTP status carried by the error.
func (e *RequestError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}

	return e.StatusCode
}

// DecodeError is an infrastructure failure: the exchange completed but
// the body was not the JSON we asked for (an HTML error page, usually).
type DecodeError struct {
	StatusCode int
	Detail     string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "invalid response"
	}

	if strings.TrimSpace(e.Detail) == "" {
		return fmt.Sprintf("invalid response (%d)", e.StatusCode)
	}

	return fmt.Sprintf("invalid response (%d): %s", e.StatusCode, e.Detail)
}

// HTTPStatusCode returns the HTTP status carried by the error.
func (e *DecodeError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}

	return e.StatusCode
}

// HTTPStatusCode extracts the HTTP status from typed client errors.
func HTTPStatusCode(err error) (int, bool) {
	var statusErr interface {
		HTTPStatusCode() int
	}

	if !errors.As(err, &statusErr) {
		return 0, false
	}

	status := statusErr.HTTPStatusCode()
	if status <= 0 {
		return 0, false
	}

	return status, true
}

// New builds a Client from config. Mock mode wraps the real transport in
// the canned-response fallback; otherwise the real transport is returned
// as-is.
func New(cfg *config.Config, log logrus.FieldLogger) Client {
	real := NewHTTP(cfg.API.BaseURL, cfg.API.Timeout)
	if !cfg.API.UseMockData {
		return real
	}

	return NewFallback(real, NewMock(), log)
}

// httpClient is the real transport. It does not retry, cache, or
// rate-limit.
type httpClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Compile-time interface check.
var _ Client = (*httpClient)(nil)

// NewHTTP creates the real HTTP transport against baseURL.
func NewHTTP(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *httpClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = strings.TrimSpace(token)
}

func (c *httpClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

// do performs one exchange and decodes the response into out (skipped
// when out is nil).
func (c *httpClient) do(
	ctx context.Context,
	method, path string,
	body, out any,
) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, c.baseURL+path, reader,
	)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")

	// A non-JSON body means the server never reached its handler: an
	// HTML 404 page, a gateway error page, and so on. Infrastructure
	// failure, not a domain error.
	if !looksLikeJSON(contentType, payload) {
		return &DecodeError{
			StatusCode: resp.StatusCode,
			Detail:     classifyNonJSONBody(contentType, payload),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(payload),
		}
	}

	if out == nil {
		return nil
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return &DecodeError{
			StatusCode: resp.StatusCode,
			Detail:     "empty response body",
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &DecodeError{
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("invalid JSON response: %v", err),
		}
	}

	return nil
}

// doList decodes a collection endpoint defensively: any JSON success body
// that is not an array yields an empty slice so downstream range loops
// stay total.
func doList[T any](
	ctx context.Context,
	c *httpClient,
	path string,
) ([]T, error) {
	var raw json.RawMessage

	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return []T{}, nil
	}

	if out == nil {
		out = []T{}
	}

	return out, nil
}

func (c *httpClient) Login(
	ctx context.Context, email, password string,
) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) Signup(
	ctx context.Context, req SignupRequest,
) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) CurrentUser(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *httpClient) ListCompanies(ctx context.Context) ([]Company, error) {
	return doList[Company](ctx, c, "/companies")
}

func (c *httpClient) GetCompany(
	ctx context.Context, id string,
) (*Company, error) {
	var resp Company
	if err := c.do(
		ctx, http.MethodGet, "/companies/"+url.PathEscape(id), nil, &resp,
	); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) CreateCompany(
	ctx context.Context, req CreateCompanyRequest,
) (*CompanyProfile, error) {
	var resp CompanyProfile
	if err := c.do(ctx, http.MethodPost, "/companies", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) ListBugReports(
	ctx context.Context, userID string,
) ([]BugReport, error) {
	path := "/bug-reports"
	if userID != "" {
		path += "?userId=" + url.QueryEscape(userID)
	}

	return doList[BugReport](ctx, c, path)
}

func (c *httpClient) GetBugReport(
	ctx context.Context, id string,
) (*BugReport, error) {
	var resp BugReport
	if err := c.do(
		ctx, http.MethodGet, "/bug-reports/"+url.PathEscape(id), nil, &resp,
	); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) CreateBugReport(
	ctx context.Context, req CreateBugReportRequest,
) (*BugReport, error) {
	var resp BugReport
	if err := c.do(ctx, http.MethodPost, "/bug-reports", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) UpdateBugReport(
	ctx context.Context, id string, req UpdateBugReportRequest,
) (*BugReport, error) {
	var resp BugReport
	if err := c.do(
		ctx, http.MethodPut, "/bug-reports/"+url.PathEscape(id), req, &resp,
	); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) GetUser(ctx context.Context, id string) (*User, error) {
	var resp User
	if err := c.do(
		ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &resp,
	); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *httpClient) UpdateUser(
	ctx context.Context, id string, req UpdateUserRequest,
) (*User, error) {
	var resp User
	if err := c.do(
		ctx, http.MethodPut, "/users/"+url.PathEscape(id), req, &resp,
	); err != nil {
		return nil, err
	}

	return &resp, nil
}

// looksLikeJSON accepts a JSON content type, or a body that starts with a
// JSON value when the server forgot the header.
func looksLikeJSON(contentType string, payload []byte) bool {
	value := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if value == "application/json" || value == "text/json" ||
		strings.HasSuffix(value, "+json") {
		return true
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return false
	}

	switch trimmed[0] {
	case '{', '[', '"', 't', 'f', 'n', '-',
		'0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}

	return false
}

// classifyNonJSONBody summarizes a non-JSON body for the error detail.
func classifyNonJSONBody(contentType string, payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return "empty response body"
	}

	lower := strings.ToLower(trimmed)
	if strings.Contains(strings.ToLower(contentType), "text/html") ||
		strings.HasPrefix(lower, "<!doctype html") ||
		strings.HasPrefix(lower, "<html") {
		return "expected JSON response but received HTML"
	}

	return "expected JSON response but received non-JSON body"
}

// extractErrorMessage pulls the server-provided message out of a JSON
// error body.
func extractErrorMessage(payload []byte) string {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}

	for _, key := range []string{"message", "error", "detail"} {
		if value, ok := body[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}

	return ""
}
