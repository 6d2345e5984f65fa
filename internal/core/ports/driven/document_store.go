package driven

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// DocumentStore handles document persistence (PostgreSQL)
type DocumentStore interface {
	// Create inserts a new document
	Create(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID regardless of owner
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves the documents of an owner, newest first
	List(ctx context.Context, ownerID string, filter domain.DocumentFilter) ([]*domain.Document, error)

	// Update persists name and file type changes
	Update(ctx context.Context, doc *domain.Document) error

	// SetTextContent stores extracted text and marks the document processed.
	// It only writes when no text is stored yet and reports whether it did.
	SetTextContent(ctx context.Context, id, text string) (bool, error)

	// Delete deletes a document together with its versions and annotations
	Delete(ctx context.Context, id string) error
}
