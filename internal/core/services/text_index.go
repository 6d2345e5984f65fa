package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
)

// textIndexer runs the extraction pipeline and keeps text_content in sync.
// It is shared by the document and search services.
type textIndexer struct {
	docs      driven.DocumentStore
	blobs     driven.BlobStore
	extractor driven.TextExtractor
	logger    *slog.Logger
}

// index extracts text from the document's original upload and persists it.
// It returns the stored text and whether any text is available.
func (t *textIndexer) index(ctx context.Context, doc *domain.Document) (string, bool) {
	data, err := t.blobs.Get(ctx, doc.BlobKey)
	if err != nil {
		t.logger.Warn("read upload for extraction failed",
			"document_id", doc.ID, "blob_key", doc.BlobKey, "error", err)
		return "", false
	}

	ext := t.extractor.Extract(ctx, data)
	if !ext.OK() {
		t.logger.Warn("text extraction failed", "document_id", doc.ID, "reason", ext.Reason)
		return "", false
	}
	if ext.Empty() {
		t.logger.Info("text extraction found no text", "document_id", doc.ID)
		return "", false
	}

	written, err := t.docs.SetTextContent(ctx, doc.ID, ext.Text)
	if err != nil {
		// The text is still good for this request; the next one retries
		t.logger.Error("persist extracted text failed", "document_id", doc.ID, "error", err)
		return ext.Text, true
	}
	if !written {
		// A concurrent request stored its extraction first; use that one
		latest, err := t.docs.Get(ctx, doc.ID)
		if err != nil || !latest.HasText() {
			return ext.Text, true
		}
		return latest.Text(), true
	}

	t.logger.Info("text extracted", "document_id", doc.ID, "pages", len(ext.Pages))
	return ext.Text, true
}

// ensure returns searchable text for doc, extracting it lazily for PDFs
func (t *textIndexer) ensure(ctx context.Context, doc *domain.Document) (string, error) {
	if doc.HasText() {
		return doc.Text(), nil
	}
	if !doc.IsPDF() {
		return "", domain.ErrNoSearchableContent
	}

	text, ok := t.index(ctx, doc)
	if !ok {
		return "", domain.ErrExtractionFailed
	}
	return text, nil
}
