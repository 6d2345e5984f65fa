package driven

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// AnnotationStore handles annotation persistence (PostgreSQL)
type AnnotationStore interface {
	// Save creates or updates an annotation
	Save(ctx context.Context, a *domain.Annotation) error

	// Get retrieves an annotation by ID
	Get(ctx context.Context, id string) (*domain.Annotation, error)

	// ListByDocument lists all annotations of a document, oldest first
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Annotation, error)

	// ListVisible lists annotations the user created or that sit on the user's documents
	ListVisible(ctx context.Context, userID string) ([]*domain.Annotation, error)

	// Delete deletes an annotation
	Delete(ctx context.Context, id string) error
}
