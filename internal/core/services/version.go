package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// Ensure versionLedger implements VersionService
var _ driving.VersionService = (*versionLedger)(nil)

// versionLedger assigns version numbers, tracks the current version and
// refuses to delete the last version of a document.
type versionLedger struct {
	documents driven.DocumentStore
	versions  driven.VersionStore
	blobs     driven.BlobStore
	lock      driven.DistributedLock
	logger    *slog.Logger

	lockTTL   time.Duration
	lockWait  time.Duration
	lockRetry time.Duration
}

// VersionServiceConfig holds the dependencies of the version ledger.
type VersionServiceConfig struct {
	Documents driven.DocumentStore
	Versions  driven.VersionStore
	Blobs     driven.BlobStore
	Lock      driven.DistributedLock // Serializes version numbering per document
	Logger    *slog.Logger
	LockTTL   time.Duration // Expiry of a held lock (default: 30s)
	LockWait  time.Duration // How long to wait for a busy lock (default: 10s)
	LockRetry time.Duration // Poll interval while waiting (default: 25ms)
}

// NewVersionService creates a new VersionService
func NewVersionService(cfg VersionServiceConfig) driving.VersionService {
	return newVersionLedger(cfg)
}

func newVersionLedger(cfg VersionServiceConfig) *versionLedger {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &versionLedger{
		documents: cfg.Documents,
		versions:  cfg.Versions,
		blobs:     cfg.Blobs,
		lock:      cfg.Lock,
		logger:    logger,
		lockTTL:   cfg.LockTTL,
		lockWait:  cfg.LockWait,
		lockRetry: cfg.LockRetry,
	}
	if l.lockTTL == 0 {
		l.lockTTL = 30 * time.Second
	}
	if l.lockWait == 0 {
		l.lockWait = 10 * time.Second
	}
	if l.lockRetry == 0 {
		l.lockRetry = 25 * time.Millisecond
	}
	return l
}

func versionLockName(documentID string) string {
	return "document:" + documentID + ":versions"
}

// lockDocument blocks until the per-document version lock is held or
// lockWait elapses. The returned func releases the lock.
func (l *versionLedger) lockDocument(ctx context.Context, documentID string) (func(), error) {
	if l.lock == nil {
		return func() {}, nil
	}

	name := versionLockName(documentID)
	waitCtx, cancel := context.WithTimeout(ctx, l.lockWait)
	defer cancel()

	ticker := time.NewTicker(l.lockRetry)
	defer ticker.Stop()

	for {
		acquired, err := l.lock.Acquire(waitCtx, name, l.lockTTL)
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("acquire version lock: %w", err)
		}
		if acquired {
			return func() {
				if err := l.lock.Release(context.WithoutCancel(ctx), name); err != nil {
					l.logger.Warn("release version lock failed", "document_id", documentID, "error", err)
				}
			}, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, domain.ErrVersionLocked
		case <-ticker.C:
		}
	}
}

// record appends a version pointing at an already stored blob
func (l *versionLedger) record(ctx context.Context, documentID, blobKey, userID string) (*domain.Version, error) {
	unlock, err := l.lockDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	v, err := l.versions.CreateNext(ctx, domain.NewVersion{
		ID:          newID(),
		DocumentID:  documentID,
		BlobKey:     blobKey,
		CreatedByID: userID,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	l.logger.Info("version created",
		"document_id", documentID, "version_id", v.ID, "version_number", v.VersionNumber)
	return v, nil
}

// Create uploads a new version and makes it current
func (l *versionLedger) Create(ctx context.Context, userID, documentID string, upload *domain.Upload) (*domain.Version, error) {
	if upload.Empty() {
		return nil, domain.Required("file")
	}

	if _, err := ownedDocument(ctx, l.documents, userID, documentID); err != nil {
		return nil, err
	}

	key := newBlobKey(versionBlobPrefix, upload.Filename)
	if err := l.blobs.Put(ctx, key, upload.Data); err != nil {
		return nil, fmt.Errorf("store version upload: %w", err)
	}

	v, err := l.record(ctx, documentID, key, userID)
	if err != nil {
		if delErr := l.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			l.logger.Warn("remove orphaned upload failed", "blob_key", key, "error", delErr)
		}
		return nil, err
	}
	return v, nil
}

// List lists versions of a document, newest first
func (l *versionLedger) List(ctx context.Context, userID, documentID string) ([]*domain.Version, error) {
	if _, err := ownedDocument(ctx, l.documents, userID, documentID); err != nil {
		return nil, err
	}
	return l.versions.ListByDocument(ctx, documentID)
}

// ListAll lists versions across all of the user's documents
func (l *versionLedger) ListAll(ctx context.Context, userID string) ([]*domain.Version, error) {
	return l.versions.ListByOwner(ctx, userID)
}

// resolve loads a version together with its document, hiding both unless
// the user owns the document. An empty documentID matches any document.
func (l *versionLedger) resolve(ctx context.Context, userID, documentID, versionID string) (*domain.Document, *domain.Version, error) {
	v, err := l.versions.Get(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	if documentID != "" && v.DocumentID != documentID {
		return nil, nil, domain.ErrNotFound
	}

	doc, err := ownedDocument(ctx, l.documents, userID, v.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	return doc, v, nil
}

// Get retrieves a single version of a document
func (l *versionLedger) Get(ctx context.Context, userID, documentID, versionID string) (*domain.Version, error) {
	_, v, err := l.resolve(ctx, userID, documentID, versionID)
	return v, err
}

// Delete removes a version, promoting the highest remaining version when
// the current one goes. The sole version of a document is never deleted.
func (l *versionLedger) Delete(ctx context.Context, userID, documentID, versionID string) error {
	doc, _, err := l.resolve(ctx, userID, documentID, versionID)
	if err != nil {
		return err
	}

	unlock, err := l.lockDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	defer unlock()

	deleted, err := l.versions.Delete(ctx, doc.ID, versionID)
	if err != nil {
		return err
	}

	l.logger.Info("version deleted",
		"document_id", doc.ID, "version_id", deleted.ID, "version_number", deleted.VersionNumber)

	// Version 1 shares its blob with the document's original upload
	if deleted.BlobKey != doc.BlobKey {
		if err := l.blobs.Delete(ctx, deleted.BlobKey); err != nil {
			l.logger.Warn("remove version blob failed", "blob_key", deleted.BlobKey, "error", err)
		}
	}
	return nil
}

// OpenFile returns the bytes stored for a version
func (l *versionLedger) OpenFile(ctx context.Context, userID, documentID, versionID string) (*domain.File, error) {
	v, err := l.Get(ctx, userID, documentID, versionID)
	if err != nil {
		return nil, err
	}

	data, err := l.blobs.Get(ctx, v.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("read version blob: %w", err)
	}
	return &domain.File{Name: path.Base(v.BlobKey), Data: data}, nil
}
