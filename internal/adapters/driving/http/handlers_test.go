package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

func TestHealthHandler(t *testing.T) {
	server := newTestServer(t, newTestServices())

	rr := do(t, server, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	var response StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		redis      Pinger
		wantStatus int
	}{
		{"no dependencies", nil, nil, http.StatusOK},
		{"healthy database", &mockPinger{}, nil, http.StatusOK},
		{"database down", &mockPinger{err: errors.New("refused")}, nil, http.StatusServiceUnavailable},
		{"redis down", &mockPinger{}, &mockPinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, newTestServices())
			server.db = tt.db
			server.redisClient = tt.redis

			rr := httptest.NewRecorder()
			server.handleReady(rr, httptest.NewRequest("GET", "/ready", nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	server := newTestServer(t, newTestServices())
	server.version = "1.2.3"

	rr := do(t, server, httptest.NewRequest("GET", "/version", nil))

	var response VersionResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Version != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response.Version)
	}
}

func TestSwaggerDoc(t *testing.T) {
	server := newTestServer(t, newTestServices())

	rr := do(t, server, httptest.NewRequest("GET", "/swagger/doc.json", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var doc struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("swagger document is not valid JSON: %v", err)
	}
	if doc.Swagger != "2.0" {
		t.Errorf("expected swagger 2.0, got %q", doc.Swagger)
	}
	if _, ok := doc.Paths["/documents/{id}/search/"]; !ok {
		t.Error("expected search route in swagger document")
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"key": "value"})

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got %s", ct)
	}
}

func TestHandleRegister_Success(t *testing.T) {
	svc := newTestServices()
	svc.auth.registerFn = func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
		if req.Username != "alice" || req.Email != "alice@example.com" || req.Password != "s3cret" {
			t.Errorf("unexpected request: %+v", req)
		}
		return &domain.LoginResponse{
			Token:     "jwt",
			UserID:    "user-1",
			Username:  "alice",
			Email:     "alice@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}
	server := newTestServer(t, svc)

	body := `{"username":"alice","email":"alice@example.com","password":"s3cret"}`
	rr := do(t, server, httptest.NewRequest("POST", "/auth/register/", bytes.NewBufferString(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"token", "user_id", "username", "email"} {
		if _, ok := response[key]; !ok {
			t.Errorf("expected %q in response", key)
		}
	}
}

func TestHandleRegister_DuplicateUsername(t *testing.T) {
	svc := newTestServices()
	svc.auth.registerFn = func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
		return nil, domain.NewValidationError("username", "A user with that username already exists.")
	}
	server := newTestServer(t, svc)

	rr := do(t, server, httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString(`{"username":"alice"}`)))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
	var response ErrorResponse
	_ = json.NewDecoder(rr.Body).Decode(&response)
	if response.Error != "A user with that username already exists." {
		t.Errorf("unexpected error message %q", response.Error)
	}
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "success",
			body:       `{"username":"alice","password":"pw"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid json",
			body:       "invalid json",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "missing fields",
			body:       `{"username":"alice"}`,
			err:        domain.NewValidationError("credentials", "Please provide both username and password"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Please provide both username and password",
		},
		{
			name:       "bad credentials",
			body:       `{"username":"alice","password":"nope"}`,
			err:        domain.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid credentials - username or password incorrect",
		},
		{
			name:       "internal error",
			body:       `{"username":"alice","password":"pw"}`,
			err:        errors.New("database down"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServices()
			svc.auth.authenticateFn = func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.LoginResponse{Token: "jwt", UserID: "user-1", Username: req.Username}, nil
			}
			server := newTestServer(t, svc)

			rr := do(t, server, httptest.NewRequest("POST", "/auth/login/", bytes.NewBufferString(tt.body)))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantError == "" {
				return
			}
			var response ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, response.Error)
			}
		})
	}
}

func TestHandleLogout(t *testing.T) {
	svc := newTestServices()
	var revoked string
	svc.auth.logoutFn = func(ctx context.Context, token string) error {
		revoked = token
		return nil
	}
	server := newTestServer(t, svc)

	rr := do(t, server, authed("POST", "/auth/logout/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if revoked != testToken {
		t.Errorf("expected token %q to be revoked, got %q", testToken, revoked)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t, newTestServices())

	routes := []struct{ method, path string }{
		{"GET", "/documents/"},
		{"POST", "/documents/"},
		{"GET", "/documents/d1/"},
		{"GET", "/documents/d1/search/?query=x"},
		{"GET", "/documents/d1/versions/"},
		{"GET", "/versions/"},
		{"GET", "/annotations/"},
		{"POST", "/auth/logout/"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := do(t, server, httptest.NewRequest(rt.method, rt.path, nil))
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rr.Code)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantError  string
	}{
		{domain.NewValidationError("content", "content is required"), http.StatusBadRequest, "content is required"},
		{fmt.Errorf("wrapped: %w", domain.Required("file")), http.StatusBadRequest, "file is required"},
		{domain.ErrSoleVersion, http.StatusBadRequest, "Cannot delete the only version of a document"},
		{domain.ErrNotFound, http.StatusNotFound, "not found"},
		{fmt.Errorf("get document: %w", domain.ErrNotFound), http.StatusNotFound, "not found"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials - username or password incorrect"},
		{domain.ErrVersionLocked, http.StatusConflict, "another version of this document is being uploaded, try again"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	server := newTestServer(t, newTestServices())
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			server.writeServiceError(rr, httptest.NewRequest("GET", "/", nil), tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			var response ErrorResponse
			_ = json.NewDecoder(rr.Body).Decode(&response)
			if response.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, response.Error)
			}
		})
	}
}
