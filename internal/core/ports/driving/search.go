package driving

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// SearchService finds text inside a single document
type SearchService interface {
	// Search returns every occurrence of query in the document's text.
	// A document without text fails with domain.ErrNoSearchableContent,
	// or domain.ErrExtractionFailed when a PDF yields nothing.
	Search(ctx context.Context, userID, documentID, query string) (*domain.SearchResult, error)
}
