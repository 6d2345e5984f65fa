package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires every service against shared in-memory stores
type fixture struct {
	users       *mocks.MockUserStore
	docs        *mocks.MockDocumentStore
	versions    *mocks.MockVersionStore
	annotations *mocks.MockAnnotationStore
	blobs       *mocks.MockBlobStore
	extractor   *mocks.MockTextExtractor
	lock        *mocks.MockDistributedLock

	documentSvc   driving.DocumentService
	versionSvc    driving.VersionService
	annotationSvc driving.AnnotationService
	searchSvc     driving.SearchService
}

func newFixture() *fixture {
	f := &fixture{
		users:     mocks.NewMockUserStore(),
		docs:      mocks.NewMockDocumentStore(),
		blobs:     mocks.NewMockBlobStore(),
		extractor: mocks.NewMockTextExtractor(),
		lock:      mocks.NewMockDistributedLock(),
	}
	f.versions = mocks.NewMockVersionStore(f.docs, f.users)
	f.annotations = mocks.NewMockAnnotationStore(f.docs, f.users)

	logger := discardLogger()
	f.documentSvc = NewDocumentService(DocumentServiceConfig{
		Documents:   f.docs,
		Versions:    f.versions,
		Annotations: f.annotations,
		Users:       f.users,
		Blobs:       f.blobs,
		Extractor:   f.extractor,
		Lock:        f.lock,
		Logger:      logger,
	})
	f.versionSvc = NewVersionService(VersionServiceConfig{
		Documents: f.docs,
		Versions:  f.versions,
		Blobs:     f.blobs,
		Lock:      f.lock,
		Logger:    logger,
		LockWait:  time.Second,
		LockRetry: 5 * time.Millisecond,
	})
	f.annotationSvc = NewAnnotationService(AnnotationServiceConfig{
		Documents:   f.docs,
		Annotations: f.annotations,
		Logger:      logger,
	})
	f.searchSvc = NewSearchService(SearchServiceConfig{
		Documents: f.docs,
		Blobs:     f.blobs,
		Extractor: f.extractor,
		Logger:    logger,
	})
	return f
}

func (f *fixture) addUser(t testing.TB, username string) string {
	t.Helper()
	user := &domain.User{
		ID:        "user-" + username,
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user.ID
}

func (f *fixture) upload(t testing.TB, ownerID, filename string) *domain.Document {
	t.Helper()
	doc, err := f.documentSvc.Create(context.Background(), ownerID, driving.CreateDocumentRequest{
		Upload: &domain.Upload{Filename: filename, Data: []byte("%PDF-1.4 " + filename)},
	})
	require.NoError(t, err)
	return doc
}

func pagesOf(texts ...string) []domain.PageText {
	pages := make([]domain.PageText, len(texts))
	for i, text := range texts {
		pages[i] = domain.PageText{Page: i + 1, Text: text}
	}
	return pages
}

func strPtr(s string) *string { return &s }
