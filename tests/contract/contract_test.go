// Package contract provides contract tests that validate API responses against the OpenAPI spec.
package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/taskly/taskly/internal/auth"
	"github.com/taskly/taskly/internal/metrics"
	"github.com/taskly/taskly/internal/server"
	"github.com/taskly/taskly/internal/service"
	"github.com/taskly/taskly/internal/testutil/memstore"
)

// specPath returns the OpenAPI document location, overridable for CI.
func specPath() string {
	if p := os.Getenv("OPENAPI_SPEC_PATH"); p != "" {
		return p
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, "..", "..", "docs", "api", "openapi.yaml")
}

// loadSpec loads and validates the OpenAPI spec.
func loadSpec(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromFile(specPath())
	if err != nil {
		t.Fatalf("Failed to load OpenAPI spec: %v", err)
	}

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		t.Fatalf("Failed to create router from spec: %v", err)
	}

	return spec, router
}

// contractClient drives the in-process API and checks every exchange
// against the document.
type contractClient struct {
	t       *testing.T
	handler http.Handler
	router  routers.Router
	token   string
}

func newContractClient(t *testing.T) *contractClient {
	t.Helper()

	_, router := loadSpec(t)

	tokens, err := auth.NewTokenManager("contract-secret")
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	rec := metrics.NewInMemory()

	handler := server.NewRouter(server.RouterConfig{
		Logger:   logger,
		Auth:     service.NewAuthService(store, tokens, rec),
		Tasks:    service.NewTaskService(store, nil, logger, rec),
		Sessions: auth.NewSessions(auth.SessionOptions{Transport: auth.TransportHeader}),
		Tokens:   tokens,
		Metrics:  rec,
		DB:       store,
	})

	return &contractClient{t: t, handler: handler, router: router}
}

func (c *contractClient) newRequest(method, path, body string) *http.Request {
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req
}

// call serves the request, validates request and response against the OpenAPI document,
// and returns the status and body.
func (c *contractClient) call(method, path, body string) (int, []byte) {
	c.t.Helper()

	validationReq := c.newRequest(method, path, body)
	route, pathParams, err := c.router.FindRoute(validationReq)
	if err != nil {
		c.t.Fatalf("%s %s not documented: %v", method, path, err)
	}

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    validationReq,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(context.Background(), reqInput); err != nil {
		c.t.Errorf("%s %s: request does not match spec: %v", method, path, err)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, c.newRequest(method, path, body))
	respBody := rec.Body.Bytes()

	respInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: reqInput,
		Status:                 rec.Code,
		Header:                 rec.Header(),
		Body:                   io.NopCloser(bytes.NewReader(respBody)),
	}
	if err := openapi3filter.ValidateResponse(context.Background(), respInput); err != nil {
		c.t.Errorf("%s %s -> %d: response does not match spec: %v\nbody: %s", method, path, rec.Code, err, respBody)
	}

	return rec.Code, respBody
}

// TestOpenAPISpecValid ensures the OpenAPI spec is valid.
func TestOpenAPISpecValid(t *testing.T) {
	spec, _ := loadSpec(t)

	expectedPaths := []string{
		"/api/auth/register",
		"/api/auth/login",
		"/api/auth/logout",
		"/api/auth/me",
		"/api/tasks",
		"/api/tasks/{id}",
		"/health",
		"/healthz",
		"/readyz",
	}

	for _, path := range expectedPaths {
		if spec.Paths.Find(path) == nil {
			t.Errorf("Expected path %s not found in spec", path)
		}
	}
}

// TestServiceEndpointsMatchSpec validates unauthenticated endpoints.
func TestServiceEndpointsMatchSpec(t *testing.T) {
	c := newContractClient(t)

	for _, path := range []string{"/", "/health", "/healthz", "/readyz", "/metrics"} {
		if status, body := c.call(http.MethodGet, path, ""); status != http.StatusOK {
			t.Errorf("GET %s = %d %s", path, status, body)
		}
	}
}

// TestTaskLifecycleMatchesSpec drives every documented operation, including
// its error responses.
func TestTaskLifecycleMatchesSpec(t *testing.T) {
	c := newContractClient(t)

	steps := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/api/auth/register", `{"username":"amy","email":"amy@x.com","password":"pw123456"}`, http.StatusOK},
		{http.MethodPost, "/api/auth/register", `{"username":"amy","email":"amy@x.com","password":"pw123456"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/auth/login", `{"email":"amy@x.com","password":"wrong"}`, http.StatusBadRequest},
		{http.MethodGet, "/api/tasks", "", http.StatusUnauthorized},
	}
	for _, s := range steps {
		if status, body := c.call(s.method, s.path, s.body); status != s.want {
			t.Fatalf("%s %s = %d %s, want %d", s.method, s.path, status, body, s.want)
		}
	}

	status, body := c.call(http.MethodPost, "/api/auth/login", `{"email":"amy@x.com","password":"pw123456"}`)
	if status != http.StatusOK {
		t.Fatalf("login = %d %s", status, body)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Token == "" {
		t.Fatalf("login body %s: %v", body, err)
	}
	c.token = login.Token

	if status, body := c.call(http.MethodGet, "/api/auth/me", ""); status != http.StatusOK {
		t.Fatalf("me = %d %s", status, body)
	}

	status, body = c.call(http.MethodPost, "/api/tasks", `{"title":"Write report"}`)
	if status != http.StatusOK {
		t.Fatalf("create = %d %s", status, body)
	}
	var task struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}

	lifecycle := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/api/tasks", `{"title":""}`, http.StatusBadRequest},
		{http.MethodGet, "/api/tasks", "", http.StatusOK},
		{http.MethodPut, "/api/tasks/" + task.ID, `{"description":"final"}`, http.StatusOK},
		{http.MethodPut, "/api/tasks/nonexistent", `{"title":"x"}`, http.StatusNotFound},
		{http.MethodDelete, "/api/tasks/" + task.ID, "", http.StatusOK},
		{http.MethodDelete, "/api/tasks/" + task.ID, "", http.StatusNotFound},
		{http.MethodPost, "/api/auth/logout", "", http.StatusOK},
	}
	for _, s := range lifecycle {
		if status, body := c.call(s.method, s.path, s.body); status != s.want {
			t.Errorf("%s %s = %d %s, want %d", s.method, s.path, status, body, s.want)
		}
	}
}
