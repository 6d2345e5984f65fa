package driven

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// VersionStore handles the version ledger of documents (PostgreSQL)
type VersionStore interface {
	// CreateNext appends a version with the next free number and makes it current.
	// Number assignment and the current pointer update happen atomically.
	CreateNext(ctx context.Context, v domain.NewVersion) (*domain.Version, error)

	// Get retrieves a version by ID
	Get(ctx context.Context, id string) (*domain.Version, error)

	// ListByDocument lists versions of a document, newest first
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Version, error)

	// ListByOwner lists versions of every document an owner has
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Version, error)

	// Delete removes a version following domain.PlanVersionDeletion,
	// reassigning the current version in the same transaction.
	Delete(ctx context.Context, documentID, versionID string) (*domain.Version, error)
}
