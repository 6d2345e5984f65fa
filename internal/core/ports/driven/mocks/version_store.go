package mocks

import (
	"context"
	"time"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// MockVersionStore is an in-memory VersionStore backed by a MockDocumentStore
type MockVersionStore struct {
	docs  *MockDocumentStore
	users *MockUserStore

	// gap > 0 splits CreateNext into a read and a later insert
	gap time.Duration
}

// NewMockVersionStore creates a version store sharing state with docs.
// users is optional and only used to fill in creator usernames.
func NewMockVersionStore(docs *MockDocumentStore, users *MockUserStore) *MockVersionStore {
	return &MockVersionStore{docs: docs, users: users}
}

func (m *MockVersionStore) project(v *domain.Version) *domain.Version {
	c := *v
	if v.CreatedByID != nil {
		if name := m.users.Username(*v.CreatedByID); name != "" {
			c.CreatedBy = &name
		}
	}
	return &c
}

// versionsOf must be called with docs.mu held
func (m *MockVersionStore) versionsOf(documentID string) []*domain.Version {
	var result []*domain.Version
	for _, v := range m.docs.versions {
		if v.DocumentID == documentID {
			result = append(result, v)
		}
	}
	domain.SortVersions(result)
	return result
}

// SplitCreate makes CreateNext read the next number, wait for gap and only
// then insert, the way a store without a row lock would behave. Concurrent
// callers that are not serialized elsewhere end up with duplicate numbers.
// Call it before the store is shared between goroutines.
func (m *MockVersionStore) SplitCreate(gap time.Duration) {
	m.gap = gap
}

func (m *MockVersionStore) CreateNext(ctx context.Context, nv domain.NewVersion) (*domain.Version, error) {
	if m.gap > 0 {
		return m.createSplit(ctx, nv)
	}

	m.docs.mu.Lock()
	defer m.docs.mu.Unlock()

	doc, ok := m.docs.documents[nv.DocumentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.insert(doc, nv, domain.NextVersionNumber(m.versionsOf(nv.DocumentID))), nil
}

func (m *MockVersionStore) createSplit(ctx context.Context, nv domain.NewVersion) (*domain.Version, error) {
	m.docs.mu.RLock()
	_, ok := m.docs.documents[nv.DocumentID]
	number := domain.NextVersionNumber(m.versionsOf(nv.DocumentID))
	m.docs.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.gap):
	}

	m.docs.mu.Lock()
	defer m.docs.mu.Unlock()

	doc, ok := m.docs.documents[nv.DocumentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.insert(doc, nv, number), nil
}

// insert must be called with docs.mu held
func (m *MockVersionStore) insert(doc *domain.Document, nv domain.NewVersion, number int) *domain.Version {
	v := &domain.Version{
		ID:            nv.ID,
		DocumentID:    nv.DocumentID,
		VersionNumber: number,
		BlobKey:       nv.BlobKey,
		CreatedAt:     nv.CreatedAt,
	}
	if nv.CreatedByID != "" {
		creator := nv.CreatedByID
		v.CreatedByID = &creator
	}
	m.docs.versions[v.ID] = v

	current := v.ID
	doc.CurrentVersionID = &current
	doc.UpdatedAt = nv.CreatedAt
	return m.project(v)
}

func (m *MockVersionStore) Get(ctx context.Context, id string) (*domain.Version, error) {
	m.docs.mu.RLock()
	defer m.docs.mu.RUnlock()
	v, ok := m.docs.versions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.project(v), nil
}

func (m *MockVersionStore) ListByDocument(ctx context.Context, documentID string) ([]*domain.Version, error) {
	m.docs.mu.RLock()
	defer m.docs.mu.RUnlock()
	var result []*domain.Version
	for _, v := range m.versionsOf(documentID) {
		result = append(result, m.project(v))
	}
	return result, nil
}

func (m *MockVersionStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Version, error) {
	m.docs.mu.RLock()
	defer m.docs.mu.RUnlock()
	var result []*domain.Version
	for _, v := range m.docs.versions {
		if doc, ok := m.docs.documents[v.DocumentID]; ok && doc.OwnerID == ownerID {
			result = append(result, m.project(v))
		}
	}
	domain.SortVersions(result)
	return result, nil
}

func (m *MockVersionStore) Delete(ctx context.Context, documentID, versionID string) (*domain.Version, error) {
	m.docs.mu.Lock()
	defer m.docs.mu.Unlock()

	doc, ok := m.docs.documents[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	plan, err := domain.PlanVersionDeletion(doc, m.versionsOf(documentID), versionID)
	if err != nil {
		return nil, err
	}
	if plan.NewCurrentID != nil {
		doc.CurrentVersionID = plan.NewCurrentID
	}
	delete(m.docs.versions, versionID)
	return m.project(plan.Victim), nil
}

// Count returns the number of versions a document has
func (m *MockVersionStore) Count(documentID string) int {
	m.docs.mu.RLock()
	defer m.docs.mu.RUnlock()
	return len(m.versionsOf(documentID))
}
