package postgres

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnnotationStore = (*AnnotationStore)(nil)

// AnnotationStore implements driven.AnnotationStore using PostgreSQL
type AnnotationStore struct {
	db *DB
}

// NewAnnotationStore creates a new AnnotationStore
func NewAnnotationStore(db *DB) *AnnotationStore {
	return &AnnotationStore{db: db}
}

const annotationSelect = `
	SELECT a.id, a.document_id, a.user_id, a.type, a.content, a.page,
		a.position_x, a.position_y, u.username, a.created_at, a.updated_at
	FROM annotations a
	JOIN users u ON u.id = a.user_id
`

func scanAnnotation(row rowScanner) (*domain.Annotation, error) {
	var a domain.Annotation
	var posX, posY sql.NullFloat64

	err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.UserID,
		&a.Type,
		&a.Content,
		&a.Page,
		&posX,
		&posY,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.PositionX = Float64Ptr(posX)
	a.PositionY = Float64Ptr(posY)
	return &a, nil
}

// Save creates or updates an annotation
func (s *AnnotationStore) Save(ctx context.Context, a *domain.Annotation) error {
	query := `
		INSERT INTO annotations (id, document_id, user_id, type, content, page,
			position_x, position_y, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			content = EXCLUDED.content,
			page = EXCLUDED.page,
			position_x = EXCLUDED.position_x,
			position_y = EXCLUDED.position_y,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.DocumentID,
		a.UserID,
		string(a.Type),
		a.Content,
		a.Page,
		NullFloat64(a.PositionX),
		NullFloat64(a.PositionY),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

// Get retrieves an annotation by ID
func (s *AnnotationStore) Get(ctx context.Context, id string) (*domain.Annotation, error) {
	a, err := scanAnnotation(s.db.QueryRowContext(ctx, annotationSelect+` WHERE a.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return a, err
}

func (s *AnnotationStore) list(ctx context.Context, query string, args ...any) ([]*domain.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var annotations []*domain.Annotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}

// ListByDocument lists all annotations of a document, oldest first
func (s *AnnotationStore) ListByDocument(ctx context.Context, documentID string) ([]*domain.Annotation, error) {
	return s.list(ctx, annotationSelect+` WHERE a.document_id = $1 ORDER BY a.created_at`, documentID)
}

// ListVisible lists annotations the user created or that sit on the user's documents
func (s *AnnotationStore) ListVisible(ctx context.Context, userID string) ([]*domain.Annotation, error) {
	return s.list(ctx, annotationSelect+`
		JOIN documents d ON d.id = a.document_id
		WHERE a.user_id = $1 OR d.owner_id = $1
		ORDER BY a.created_at
	`, userID)
}

// Delete deletes an annotation
func (s *AnnotationStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}
