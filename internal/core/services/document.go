package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService implements the DocumentService interface
type documentService struct {
	documents   driven.DocumentStore
	versions    driven.VersionStore
	annotations driven.AnnotationStore
	users       driven.UserStore
	blobs       driven.BlobStore
	ledger      *versionLedger
	indexer     *textIndexer
	logger      *slog.Logger
}

// DocumentServiceConfig holds the dependencies of the document service
type DocumentServiceConfig struct {
	Documents   driven.DocumentStore
	Versions    driven.VersionStore
	Annotations driven.AnnotationStore
	Users       driven.UserStore
	Blobs       driven.BlobStore
	Extractor   driven.TextExtractor
	Lock        driven.DistributedLock
	Logger      *slog.Logger
	LockWait    time.Duration
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) driving.DocumentService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &documentService{
		documents:   cfg.Documents,
		versions:    cfg.Versions,
		annotations: cfg.Annotations,
		users:       cfg.Users,
		blobs:       cfg.Blobs,
		ledger: newVersionLedger(VersionServiceConfig{
			Documents: cfg.Documents,
			Versions:  cfg.Versions,
			Blobs:     cfg.Blobs,
			Lock:      cfg.Lock,
			Logger:    logger,
			LockWait:  cfg.LockWait,
		}),
		indexer: &textIndexer{
			docs:      cfg.Documents,
			blobs:     cfg.Blobs,
			extractor: cfg.Extractor,
			logger:    logger,
		},
		logger: logger,
	}
}

func validateDocument(doc *domain.Document) error {
	return validationError(validation.ValidateStruct(doc,
		validation.Field(&doc.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, 255).Error("name must be at most 255 characters")),
		validation.Field(&doc.FileType,
			validation.RuneLength(0, 50).Error("file_type must be at most 50 characters")),
	))
}

// Create stores the upload, records version 1 and extracts PDF text
func (s *documentService) Create(ctx context.Context, userID string, req driving.CreateDocumentRequest) (*domain.Document, error) {
	if req.Upload.Empty() {
		return nil, domain.Required("file")
	}

	now := time.Now()
	doc := &domain.Document{
		ID:        newID(),
		Name:      strings.TrimSpace(req.Name),
		FileType:  strings.TrimSpace(req.FileType),
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Name == "" {
		doc.Name = uploadName(req.Upload.Filename)
	}
	if doc.FileType == "" {
		doc.FileType = req.Upload.Extension()
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	doc.BlobKey = newBlobKey(documentBlobPrefix, req.Upload.Filename)
	if err := s.blobs.Put(ctx, doc.BlobKey, req.Upload.Data); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		s.discardBlob(ctx, doc.BlobKey)
		return nil, fmt.Errorf("create document: %w", err)
	}

	v, err := s.ledger.record(ctx, doc.ID, doc.BlobKey, userID)
	if err != nil {
		if delErr := s.documents.Delete(context.WithoutCancel(ctx), doc.ID); delErr != nil {
			s.logger.Error("roll back document failed", "document_id", doc.ID, "error", delErr)
		}
		s.discardBlob(ctx, doc.BlobKey)
		return nil, err
	}
	doc.CurrentVersionID = &v.ID

	s.logger.Info("document created",
		"document_id", doc.ID, "owner_id", userID, "file_type", doc.FileType, "size", len(req.Upload.Data))

	if doc.IsPDF() {
		if text, ok := s.indexer.index(ctx, doc); ok {
			doc.TextContent = &text
			doc.IsOCRProcessed = true
		}
	}
	return doc, nil
}

func (s *documentService) discardBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("remove blob failed", "blob_key", key, "error", err)
	}
}

// Get retrieves a document with its owner, versions and annotations
func (s *documentService) Get(ctx context.Context, userID, id string) (*domain.DocumentDetail, error) {
	doc, err := ownedDocument(ctx, s.documents, userID, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.DocumentDetail{Document: doc}

	if owner, err := s.users.Get(ctx, doc.OwnerID); err == nil {
		detail.Owner = owner.ToSummary()
	}

	if detail.Versions, err = s.versions.ListByDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if detail.Annotations, err = s.annotations.ListByDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return detail, nil
}

// List retrieves the user's documents
func (s *documentService) List(ctx context.Context, userID string, filter domain.DocumentFilter) ([]*domain.Document, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.documents.List(ctx, userID, filter)
}

// Update changes name or file type
func (s *documentService) Update(ctx context.Context, userID, id string, req driving.UpdateDocumentRequest) (*domain.Document, error) {
	doc, err := ownedDocument(ctx, s.documents, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doc.Name = strings.TrimSpace(*req.Name)
	}
	if req.FileType != nil {
		doc.FileType = strings.TrimSpace(*req.FileType)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	doc.UpdatedAt = time.Now()
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the document, its versions, annotations and blobs
func (s *documentService) Delete(ctx context.Context, userID, id string) error {
	doc, err := ownedDocument(ctx, s.documents, userID, id)
	if err != nil {
		return err
	}

	versions, err := s.versions.ListByDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}

	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}

	keys := map[string]struct{}{doc.BlobKey: {}}
	for _, v := range versions {
		keys[v.BlobKey] = struct{}{}
	}
	for key := range keys {
		s.discardBlob(ctx, key)
	}

	s.logger.Info("document deleted", "document_id", id, "versions", len(versions))
	return nil
}

// EnsureTextContent returns stored text, extracting it from a PDF when missing
func (s *documentService) EnsureTextContent(ctx context.Context, userID, id string) (string, error) {
	doc, err := ownedDocument(ctx, s.documents, userID, id)
	if err != nil {
		return "", err
	}
	return s.indexer.ensure(ctx, doc)
}

// OpenFile returns the bytes of the document's current file
func (s *documentService) OpenFile(ctx context.Context, userID, id string) (*domain.File, error) {
	doc, err := ownedDocument(ctx, s.documents, userID, id)
	if err != nil {
		return nil, err
	}

	key := doc.BlobKey
	if doc.CurrentVersionID != nil {
		v, err := s.versions.Get(ctx, *doc.CurrentVersionID)
		if err != nil {
			return nil, fmt.Errorf("load current version: %w", err)
		}
		key = v.BlobKey
	}

	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read document blob: %w", err)
	}
	return &domain.File{Name: path.Base(key), Data: data}, nil
}
