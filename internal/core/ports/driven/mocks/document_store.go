package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// MockDocumentStore is an in-memory DocumentStore for testing.
// MockVersionStore and MockAnnotationStore share its lock so that
// cross-table changes stay atomic like the PostgreSQL transactions.
type MockDocumentStore struct {
	mu          sync.RWMutex
	documents   map[string]*domain.Document
	versions    map[string]*domain.Version
	annotations map[string]*domain.Annotation

	// Optional error injection
	SetTextErr error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents:   make(map[string]*domain.Document),
		versions:    make(map[string]*domain.Version),
		annotations: make(map[string]*domain.Annotation),
	}
}

func copyDocument(doc *domain.Document) *domain.Document {
	c := *doc
	if doc.TextContent != nil {
		text := *doc.TextContent
		c.TextContent = &text
	}
	if doc.CurrentVersionID != nil {
		id := *doc.CurrentVersionID
		c.CurrentVersionID = &id
	}
	return &c
}

func (m *MockDocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.documents[doc.ID]; exists {
		return domain.ErrAlreadyExists
	}
	m.documents[doc.ID] = copyDocument(doc)
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *MockDocumentStore) List(ctx context.Context, ownerID string, filter domain.DocumentFilter) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	term := strings.ToLower(filter.Search)
	var result []*domain.Document
	for _, doc := range m.documents {
		if doc.OwnerID != ownerID {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(doc.Name), term) &&
			!strings.Contains(strings.ToLower(doc.Text()), term) {
			continue
		}
		result = append(result, copyDocument(doc))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockDocumentStore) Update(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.documents[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Name = doc.Name
	stored.FileType = doc.FileType
	stored.UpdatedAt = doc.UpdatedAt
	return nil
}

func (m *MockDocumentStore) SetTextContent(ctx context.Context, id, text string) (bool, error) {
	if m.SetTextErr != nil {
		return false, m.SetTextErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.documents[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if stored.HasText() {
		return false, nil
	}
	stored.TextContent = &text
	stored.IsOCRProcessed = true
	stored.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	for vid, v := range m.versions {
		if v.DocumentID == id {
			delete(m.versions, vid)
		}
	}
	for aid, a := range m.annotations {
		if a.DocumentID == id {
			delete(m.annotations, aid)
		}
	}
	return nil
}

// Count returns the number of stored documents
func (m *MockDocumentStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}
