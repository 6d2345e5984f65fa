package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
)

// Blob key prefixes, one directory per kind of upload
const (
	documentBlobPrefix = "documents"
	versionBlobPrefix  = "document_versions"
)

func newID() string {
	return uuid.NewString()
}

// uploadName strips any client-side directories from an upload filename
func uploadName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "upload"
	}
	return name
}

// newBlobKey builds a unique key that keeps the original filename readable
func newBlobKey(prefix, filename string) string {
	return path.Join(prefix, uuid.NewString(), uploadName(filename))
}

// ownedDocument loads a document and hides it from everyone but its owner
func ownedDocument(ctx context.Context, docs driven.DocumentStore, userID, id string) (*domain.Document, error) {
	doc, err := docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// validationError turns ozzo-validation errors into a domain.ValidationError
// naming the first offending field
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	first := fields[0]
	return domain.NewValidationError(first, errs[first].Error())
}
