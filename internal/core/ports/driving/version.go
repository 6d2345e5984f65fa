package driving

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// VersionService manages the version ledger of a user's documents.
// Methods taking both a documentID and a versionID accept an empty
// documentID for the top-level /versions/ routes.
type VersionService interface {
	// Create uploads a new version and makes it current
	Create(ctx context.Context, userID, documentID string, upload *domain.Upload) (*domain.Version, error)

	// List lists versions of a document, newest first
	List(ctx context.Context, userID, documentID string) ([]*domain.Version, error)

	// ListAll lists versions across all of the user's documents
	ListAll(ctx context.Context, userID string) ([]*domain.Version, error)

	// Get retrieves a single version of a document
	Get(ctx context.Context, userID, documentID, versionID string) (*domain.Version, error)

	// Delete removes a version; the sole version of a document cannot be deleted
	Delete(ctx context.Context, userID, documentID, versionID string) error

	// OpenFile returns the bytes stored for a version
	OpenFile(ctx context.Context, userID, documentID, versionID string) (*domain.File, error)
}
