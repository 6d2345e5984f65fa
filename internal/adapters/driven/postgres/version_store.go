package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VersionStore = (*VersionStore)(nil)

// VersionStore implements driven.VersionStore using PostgreSQL
type VersionStore struct {
	db *DB
}

// NewVersionStore creates a new VersionStore
func NewVersionStore(db *DB) *VersionStore {
	return &VersionStore{db: db}
}

// queryer is satisfied by *sql.DB, *DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const versionSelect = `
	SELECT v.id, v.document_id, v.version_number, v.blob_key, v.created_by_id, u.username, v.created_at
	FROM document_versions v
	LEFT JOIN users u ON u.id = v.created_by_id
`

func scanVersion(row rowScanner) (*domain.Version, error) {
	var v domain.Version
	var createdByID, createdBy sql.NullString

	err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.BlobKey,
		&createdByID,
		&createdBy,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.CreatedByID = StringPtr(createdByID)
	v.CreatedBy = StringPtr(createdBy)
	return &v, nil
}

func queryVersions(ctx context.Context, q queryer, query string, args ...any) ([]*domain.Version, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*domain.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func getVersion(ctx context.Context, q queryer, id string) (*domain.Version, error) {
	v, err := scanVersion(q.QueryRowContext(ctx, versionSelect+` WHERE v.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return v, err
}

// lockDocumentRow takes the row lock that serializes ledger changes of a document
func lockDocumentRow(ctx context.Context, tx *sql.Tx, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`

	doc, err := scanDocument(tx.QueryRowContext(ctx, query, documentID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// CreateNext appends a version with the next free number and makes it current
func (s *VersionStore) CreateNext(ctx context.Context, nv domain.NewVersion) (*domain.Version, error) {
	var created *domain.Version

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := lockDocumentRow(ctx, tx, nv.DocumentID); err != nil {
			return err
		}

		var number int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version_number), 0) + 1 FROM document_versions WHERE document_id = $1`,
			nv.DocumentID,
		).Scan(&number)
		if err != nil {
			return fmt.Errorf("next version number: %w", err)
		}

		var createdBy sql.NullString
		if nv.CreatedByID != "" {
			createdBy = sql.NullString{String: nv.CreatedByID, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO document_versions (id, document_id, version_number, blob_key, created_by_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, nv.ID, nv.DocumentID, number, nv.BlobKey, createdBy, nv.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert version: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET current_version_id = $2, updated_at = $3 WHERE id = $1`,
			nv.DocumentID, nv.ID, nv.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("set current version: %w", err)
		}

		created, err = getVersion(ctx, tx, nv.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get retrieves a version by ID
func (s *VersionStore) Get(ctx context.Context, id string) (*domain.Version, error) {
	return getVersion(ctx, s.db, id)
}

// ListByDocument lists versions of a document, newest first
func (s *VersionStore) ListByDocument(ctx context.Context, documentID string) ([]*domain.Version, error) {
	return queryVersions(ctx, s.db,
		versionSelect+` WHERE v.document_id = $1 ORDER BY v.version_number DESC`, documentID)
}

// ListByOwner lists versions of every document an owner has
func (s *VersionStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Version, error) {
	return queryVersions(ctx, s.db, versionSelect+`
		JOIN documents d ON d.id = v.document_id
		WHERE d.owner_id = $1
		ORDER BY v.created_at DESC, v.version_number DESC
	`, ownerID)
}

// Delete removes a version and moves the current pointer in one transaction
func (s *VersionStore) Delete(ctx context.Context, documentID, versionID string) (*domain.Version, error) {
	var victim *domain.Version

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		doc, err := lockDocumentRow(ctx, tx, documentID)
		if err != nil {
			return err
		}

		versions, err := queryVersions(ctx, tx, versionSelect+` WHERE v.document_id = $1`, documentID)
		if err != nil {
			return err
		}

		plan, err := domain.PlanVersionDeletion(doc, versions, versionID)
		if err != nil {
			return err
		}

		if plan.NewCurrentID != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE documents SET current_version_id = $2, updated_at = NOW() WHERE id = $1`,
				documentID, *plan.NewCurrentID,
			)
			if err != nil {
				return fmt.Errorf("reassign current version: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM document_versions WHERE id = $1`, versionID); err != nil {
			return fmt.Errorf("delete version: %w", err)
		}

		victim = plan.Victim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return victim, nil
}
