package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// Ensure annotationService implements AnnotationService
var _ driving.AnnotationService = (*annotationService)(nil)

// annotationService implements the AnnotationService interface
type annotationService struct {
	documents   driven.DocumentStore
	annotations driven.AnnotationStore
	logger      *slog.Logger
}

// AnnotationServiceConfig holds the dependencies of the annotation service
type AnnotationServiceConfig struct {
	Documents   driven.DocumentStore
	Annotations driven.AnnotationStore
	Logger      *slog.Logger
}

// NewAnnotationService creates a new AnnotationService
func NewAnnotationService(cfg AnnotationServiceConfig) driving.AnnotationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &annotationService{
		documents:   cfg.Documents,
		annotations: cfg.Annotations,
		logger:      logger,
	}
}

func annotationTypeRule() validation.Rule {
	types := domain.AnnotationTypes()
	allowed := make([]any, len(types))
	names := make([]string, len(types))
	for i, t := range types {
		allowed[i] = t
		names[i] = string(t)
	}
	return validation.In(allowed...).Error("type must be one of: " + strings.Join(names, ", "))
}

func validateAnnotation(a *domain.Annotation) error {
	return validationError(validation.ValidateStruct(a,
		validation.Field(&a.Content, validation.Required.Error("content is required")),
		validation.Field(&a.Type, validation.Required.Error("type is required"), annotationTypeRule()),
		validation.Field(&a.Page,
			validation.Required.Error("page must be at least 1"),
			validation.Min(1).Error("page must be at least 1")),
	))
}

// apply copies the provided request fields onto a
func apply(a *domain.Annotation, req driving.AnnotationRequest) {
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Page != nil {
		a.Page = *req.Page
	}
	if req.PositionX != nil {
		a.PositionX = req.PositionX
	}
	if req.PositionY != nil {
		a.PositionY = req.PositionY
	}
}

// Create adds an annotation to a document the user owns
func (s *annotationService) Create(ctx context.Context, userID, documentID string, req driving.AnnotationRequest) (*domain.Annotation, error) {
	if _, err := ownedDocument(ctx, s.documents, userID, documentID); err != nil {
		return nil, err
	}

	now := time.Now()
	a := &domain.Annotation{
		ID:         newID(),
		DocumentID: documentID,
		UserID:     userID,
		Type:       domain.DefaultAnnotationType,
		Page:       domain.DefaultAnnotationPage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	apply(a, req)
	if err := validateAnnotation(a); err != nil {
		return nil, err
	}

	return s.save(ctx, a)
}

// save persists a and reloads it so the creator's username is filled in
func (s *annotationService) save(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	if err := s.annotations.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save annotation: %w", err)
	}

	stored, err := s.annotations.Get(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("reload annotation: %w", err)
	}

	s.logger.Info("annotation saved",
		"annotation_id", stored.ID, "document_id", stored.DocumentID, "type", stored.Type, "page", stored.Page)
	return stored, nil
}

// ListForDocument lists the document's annotations visible to the user
func (s *annotationService) ListForDocument(ctx context.Context, userID, documentID string) ([]*domain.Annotation, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	all, err := s.annotations.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID == userID {
		return all, nil
	}

	visible := make([]*domain.Annotation, 0, len(all))
	for _, a := range all {
		if a.VisibleTo(userID, doc.OwnerID) {
			visible = append(visible, a)
		}
	}
	if len(visible) == 0 {
		// Nothing in scope, so the document itself stays hidden
		return nil, domain.ErrNotFound
	}
	return visible, nil
}

// ListAll lists every annotation visible to the user
func (s *annotationService) ListAll(ctx context.Context, userID string) ([]*domain.Annotation, error) {
	return s.annotations.ListVisible(ctx, userID)
}

// visible loads an annotation and applies the visibility rule
func (s *annotationService) visible(ctx context.Context, userID, documentID, annotationID string) (*domain.Annotation, error) {
	a, err := s.annotations.Get(ctx, annotationID)
	if err != nil {
		return nil, err
	}
	if documentID != "" && a.DocumentID != documentID {
		return nil, domain.ErrNotFound
	}

	doc, err := s.documents.Get(ctx, a.DocumentID)
	if err != nil {
		return nil, err
	}
	if !a.VisibleTo(userID, doc.OwnerID) {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// Get retrieves an annotation of a document
func (s *annotationService) Get(ctx context.Context, userID, documentID, annotationID string) (*domain.Annotation, error) {
	return s.visible(ctx, userID, documentID, annotationID)
}

// Replace overwrites an annotation. Content is mandatory; other omitted
// fields keep their stored values.
func (s *annotationService) Replace(ctx context.Context, userID, documentID, annotationID string, req driving.AnnotationRequest) (*domain.Annotation, error) {
	if req.Content == nil {
		return nil, domain.Required("content")
	}
	return s.Patch(ctx, userID, documentID, annotationID, req)
}

// Patch changes only the provided fields
func (s *annotationService) Patch(ctx context.Context, userID, documentID, annotationID string, req driving.AnnotationRequest) (*domain.Annotation, error) {
	a, err := s.visible(ctx, userID, documentID, annotationID)
	if err != nil {
		return nil, err
	}

	apply(a, req)
	if err := validateAnnotation(a); err != nil {
		return nil, err
	}

	a.UpdatedAt = time.Now()
	return s.save(ctx, a)
}

// Delete removes an annotation
func (s *annotationService) Delete(ctx context.Context, userID, documentID, annotationID string) error {
	a, err := s.visible(ctx, userID, documentID, annotationID)
	if err != nil {
		return err
	}

	if err := s.annotations.Delete(ctx, a.ID); err != nil {
		return err
	}

	s.logger.Info("annotation deleted", "annotation_id", a.ID, "document_id", a.DocumentID)
	return nil
}
