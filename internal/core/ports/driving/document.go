package driving

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// CreateDocumentRequest represents a document upload
type CreateDocumentRequest struct {
	Name     string
	FileType string
	Upload   *domain.Upload
}

// UpdateDocumentRequest changes document metadata. Nil fields are left untouched.
type UpdateDocumentRequest struct {
	Name     *string `json:"name,omitempty"`
	FileType *string `json:"file_type,omitempty"`
}

// DocumentService manages documents on behalf of their owner.
// Documents of other users are reported as domain.ErrNotFound.
type DocumentService interface {
	// Create stores the upload, records version 1 and extracts PDF text
	Create(ctx context.Context, userID string, req CreateDocumentRequest) (*domain.Document, error)

	// Get retrieves a document with its owner, versions and annotations
	Get(ctx context.Context, userID, id string) (*domain.DocumentDetail, error)

	// List retrieves the user's documents
	List(ctx context.Context, userID string, filter domain.DocumentFilter) ([]*domain.Document, error)

	// Update changes name or file type
	Update(ctx context.Context, userID, id string, req UpdateDocumentRequest) (*domain.Document, error)

	// Delete removes the document, its versions, annotations and blobs
	Delete(ctx context.Context, userID, id string) error

	// EnsureTextContent returns stored text, extracting it from a PDF when missing
	EnsureTextContent(ctx context.Context, userID, id string) (string, error)

	// OpenFile returns the bytes of the document's current file
	OpenFile(ctx context.Context, userID, id string) (*domain.File, error)
}
