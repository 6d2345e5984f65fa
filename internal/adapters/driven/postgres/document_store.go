package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, name, file_type, owner_id, blob_key, text_content,
	is_ocr_processed, current_version_id, created_at, updated_at`

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var textContent, currentVersionID sql.NullString

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.FileType,
		&doc.OwnerID,
		&doc.BlobKey,
		&textContent,
		&doc.IsOCRProcessed,
		&currentVersionID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.TextContent = StringPtr(textContent)
	doc.CurrentVersionID = StringPtr(currentVersionID)
	return &doc, nil
}

// Create inserts a new document
func (s *DocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, name, file_type, owner_id, blob_key, text_content,
			is_ocr_processed, current_version_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.FileType,
		doc.OwnerID,
		doc.BlobKey,
		NullString(doc.TextContent),
		doc.IsOCRProcessed,
		NullString(doc.CurrentVersionID),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// escapeLike escapes LIKE wildcards so a search term matches literally
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// List retrieves the documents of an owner, newest first
func (s *DocumentStore) List(ctx context.Context, ownerID string, filter domain.DocumentFilter) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Search != "" {
		query += ` AND (name ILIKE $2 OR text_content ILIKE $2)`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update persists name and file type changes
func (s *DocumentStore) Update(ctx context.Context, doc *domain.Document) error {
	query := `UPDATE documents SET name = $2, file_type = $3, updated_at = $4 WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, doc.ID, doc.Name, doc.FileType, doc.UpdatedAt)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// SetTextContent stores extracted text unless some text is already stored
func (s *DocumentStore) SetTextContent(ctx context.Context, id, text string) (bool, error) {
	query := `
		UPDATE documents
		SET text_content = $2, is_ocr_processed = TRUE, updated_at = NOW()
		WHERE id = $1 AND (text_content IS NULL OR text_content = '')
	`

	result, err := s.db.ExecContext(ctx, query, id, text)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Delete deletes a document. Versions and annotations cascade.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// expectRow maps an UPDATE or DELETE that touched nothing to ErrNotFound
func expectRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
