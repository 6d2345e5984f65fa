package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// Mock services for testing

type mockAuthService struct {
	registerFn      func(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error)
	authenticateFn  func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	validateTokenFn func(ctx context.Context, token string) (*domain.AuthContext, error)
	logoutFn        func(ctx context.Context, token string) error
}

func (m *mockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResponse, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, req)
	}
	return nil, nil
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

type mockDocumentService struct {
	createFn   func(ctx context.Context, userID string, req driving.CreateDocumentRequest) (*domain.Document, error)
	getFn      func(ctx context.Context, userID, id string) (*domain.DocumentDetail, error)
	listFn     func(ctx context.Context, userID string, filter domain.DocumentFilter) ([]*domain.Document, error)
	updateFn   func(ctx context.Context, userID, id string, req driving.UpdateDocumentRequest) (*domain.Document, error)
	deleteFn   func(ctx context.Context, userID, id string) error
	openFileFn func(ctx context.Context, userID, id string) (*domain.File, error)
}

func (m *mockDocumentService) Create(ctx context.Context, userID string, req driving.CreateDocumentRequest) (*domain.Document, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Get(ctx context.Context, userID, id string) (*domain.DocumentDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(ctx context.Context, userID string, filter domain.DocumentFilter) ([]*domain.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, filter)
	}
	return nil, nil
}

func (m *mockDocumentService) Update(ctx context.Context, userID, id string, req driving.UpdateDocumentRequest) (*domain.Document, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, req)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return domain.ErrNotFound
}

func (m *mockDocumentService) EnsureTextContent(ctx context.Context, userID, id string) (string, error) {
	return "", domain.ErrNoSearchableContent
}

func (m *mockDocumentService) OpenFile(ctx context.Context, userID, id string) (*domain.File, error) {
	if m.openFileFn != nil {
		return m.openFileFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

type mockVersionService struct {
	createFn   func(ctx context.Context, userID, documentID string, upload *domain.Upload) (*domain.Version, error)
	listFn     func(ctx context.Context, userID, documentID string) ([]*domain.Version, error)
	listAllFn  func(ctx context.Context, userID string) ([]*domain.Version, error)
	getFn      func(ctx context.Context, userID, documentID, versionID string) (*domain.Version, error)
	deleteFn   func(ctx context.Context, userID, documentID, versionID string) error
	openFileFn func(ctx context.Context, userID, documentID, versionID string) (*domain.File, error)
}

func (m *mockVersionService) Create(ctx context.Context, userID, documentID string, upload *domain.Upload) (*domain.Version, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, documentID, upload)
	}
	return nil, domain.ErrNotFound
}

func (m *mockVersionService) List(ctx context.Context, userID, documentID string) ([]*domain.Version, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, documentID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockVersionService) ListAll(ctx context.Context, userID string) ([]*domain.Version, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockVersionService) Get(ctx context.Context, userID, documentID, versionID string) (*domain.Version, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, documentID, versionID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockVersionService) Delete(ctx context.Context, userID, documentID, versionID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, documentID, versionID)
	}
	return domain.ErrNotFound
}

func (m *mockVersionService) OpenFile(ctx context.Context, userID, documentID, versionID string) (*domain.File, error) {
	if m.openFileFn != nil {
		return m.openFileFn(ctx, userID, documentID, versionID)
	}
	return nil, domain.ErrNotFound
}

type mockAnnotationService struct {
	createFn  func(ctx context.Context, userID, documentID string, req driving.AnnotationRequest) (*domain.Annotation, error)
	listFn    func(ctx context.Context, userID, documentID string) ([]*domain.Annotation, error)
	listAllFn func(ctx context.Context, userID string) ([]*domain.Annotation, error)
	getFn     func(ctx context.Context, userID, documentID, annotationID string) (*domain.Annotation, error)
	replaceFn func(ctx context.Context, userID, documentID, annotationID string, req driving.AnnotationRequest) (*domain.Annotation, error)
	patchFn   func(ctx context.Context, userID, documentID, annotationID string, req driving.AnnotationRequest) (*domain.Annotation, error)
	deleteFn  func(ctx context.Context, userID, documentID, annotationID string) error
}

func (m *mockAnnotationService) Create(ctx context.Context, userID, documentID string, req driving.AnnotationRequest) (*domain.Annotation, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, documentID, req)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAnnotationService) ListForDocument(ctx context.Context, userID, documentID string) ([]*domain.Annotation, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, documentID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAnnotationService) ListAll(ctx context.Context, userID string) ([]*domain.Annotation, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAnnotationService) Get(ctx context.Context, userID, documentID, annotationID string) (*domain.Annotation, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, documentID, annotationID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAnnotationService) Replace(ctx context.Context, userID, documentID, annotationID string, req driving.AnnotationRequest) (*domain.Annotation, error) {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, userID, documentID, annotationID, req)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAnnotationService) Patch(ctx context.Context, userID, documentID, annotationID string, req driving.AnnotationRequest) (*domain.Annotation, error) {
	if m.patchFn != nil {
		return m.patchFn(ctx, userID, documentID, annotationID, req)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAnnotationService) Delete(ctx context.Context, userID, documentID, annotationID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, documentID, annotationID)
	}
	return domain.ErrNotFound
}

type mockSearchService struct {
	searchFn func(ctx context.Context, userID, documentID, query string) (*domain.SearchResult, error)
}

func (m *mockSearchService) Search(ctx context.Context, userID, documentID, query string) (*domain.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, userID, documentID, query)
	}
	return &domain.SearchResult{Query: query, Matches: []domain.Match{}}, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

// Test helpers

const testToken = "valid-token"

// testUser is the identity every request carrying testToken resolves to
var testUser = &domain.AuthContext{UserID: "user-1", Username: "alice", SessionID: "session-1"}

type testServices struct {
	auth        *mockAuthService
	documents   *mockDocumentService
	versions    *mockVersionService
	annotations *mockAnnotationService
	search      *mockSearchService
}

func newTestServices() *testServices {
	return &testServices{
		auth: &mockAuthService{
			validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
				if token == testToken {
					return testUser, nil
				}
				return nil, domain.ErrTokenInvalid
			},
		},
		documents:   &mockDocumentService{},
		versions:    &mockVersionService{},
		annotations: &mockAnnotationService{},
		search:      &mockSearchService{},
	}
}

func newTestServer(t *testing.T, svc *testServices) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.MaxUploadBytes = 1 << 20
	return NewServer(cfg, Services{
		Auth:        svc.auth,
		Documents:   svc.documents,
		Versions:    svc.versions,
		Annotations: svc.annotations,
		Search:      svc.search,
	}, nil, nil)
}

// do sends a request through the full handler chain
func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

// authed builds a request carrying the test token
func authed(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}
