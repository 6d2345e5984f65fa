package mocks

import (
	"context"
	"sort"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// MockAnnotationStore is an in-memory AnnotationStore backed by a MockDocumentStore
type MockAnnotationStore struct {
	docs  *MockDocumentStore
	users *MockUserStore
}

// NewMockAnnotationStore creates an annotation store sharing state with docs
func NewMockAnnotationStore(docs *MockDocumentStore, users *MockUserStore) *MockAnnotationStore {
	return &MockAnnotationStore{docs: docs, users: users}
}

func (m *MockAnnotationStore) project(a *domain.Annotation) *domain.Annotation {
	c := *a
	if name := m.users.Username(a.UserID); name != "" {
		c.CreatedBy = name
	}
	return &c
}

func sortAnnotations(list []*domain.Annotation) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func (m *MockAnnotationStore) Save(ctx context.Context, a *domain.Annotation) error {
	m.docs.mu.Lock()
	defer m.docs.mu.Unlock()
	if _, ok := m.docs.documents[a.DocumentID]; !ok {
		return domain.ErrNotFound
	}
	c := *a
	m.docs.annotations[a.ID] = &c
	return nil
}

func (m *MockAnnotationStore) Get(ctx context.Context, id string) (*domain.Annotation, error) {
	m.docs.mu.RLock()
	defer m.docs.mu.RUnlock()
	a, ok := m.docs.annotations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.project(a), nil
}

func (m *MockAnnotationStore) ListByDocument(ctx context.Context, documentID string) ([]*domain.Annotation, error) {
	m.docs.mu.RLock()
	defer m.docs.mu.RUnlock()
	var result []*domain.Annotation
	for _, a := range m.docs.annotations {
		if a.DocumentID == documentID {
			result = append(result, m.project(a))
		}
	}
	sortAnnotations(result)
	return result, nil
}

func (m *MockAnnotationStore) ListVisible(ctx context.Context, userID string) ([]*domain.Annotation, error) {
	m.docs.mu.RLock()
	defer m.docs.mu.RUnlock()
	var result []*domain.Annotation
	for _, a := range m.docs.annotations {
		doc, ok := m.docs.documents[a.DocumentID]
		if !ok {
			continue
		}
		if a.VisibleTo(userID, doc.OwnerID) {
			result = append(result, m.project(a))
		}
	}
	sortAnnotations(result)
	return result, nil
}

func (m *MockAnnotationStore) Delete(ctx context.Context, id string) error {
	m.docs.mu.Lock()
	defer m.docs.mu.Unlock()
	if _, ok := m.docs.annotations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs.annotations, id)
	return nil
}
