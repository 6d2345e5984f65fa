package driving

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// AnnotationRequest carries annotation fields from a client.
// Nil fields mean "not provided".
type AnnotationRequest struct {
	Type      *domain.AnnotationType `json:"type,omitempty"`
	Content   *string                `json:"content,omitempty"`
	Page      *int                   `json:"page,omitempty"`
	PositionX *float64               `json:"position_x,omitempty"`
	PositionY *float64               `json:"position_y,omitempty"`
}

// AnnotationService manages annotations. An annotation is visible to its
// creator and to the owner of the annotated document. An empty documentID
// on single-annotation methods matches any document.
type AnnotationService interface {
	// Create adds an annotation to a document the user owns
	Create(ctx context.Context, userID, documentID string, req AnnotationRequest) (*domain.Annotation, error)

	// ListForDocument lists the document's annotations visible to the user
	ListForDocument(ctx context.Context, userID, documentID string) ([]*domain.Annotation, error)

	// ListAll lists every annotation visible to the user
	ListAll(ctx context.Context, userID string) ([]*domain.Annotation, error)

	// Get retrieves an annotation of a document
	Get(ctx context.Context, userID, documentID, annotationID string) (*domain.Annotation, error)

	// Replace overwrites all fields of an annotation (PUT)
	Replace(ctx context.Context, userID, documentID, annotationID string, req AnnotationRequest) (*domain.Annotation, error)

	// Patch changes only the provided fields (PATCH)
	Patch(ctx context.Context, userID, documentID, annotationID string, req AnnotationRequest) (*domain.Annotation, error)

	// Delete removes an annotation
	Delete(ctx context.Context, userID, documentID, annotationID string) error
}
