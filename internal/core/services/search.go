package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
	"github.com/custodia-labs/docledger/internal/core/ports/driving"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// searchService implements the SearchService interface
type searchService struct {
	documents driven.DocumentStore
	indexer   *textIndexer
	logger    *slog.Logger
}

// SearchServiceConfig holds the dependencies of the search service
type SearchServiceConfig struct {
	Documents driven.DocumentStore
	Blobs     driven.BlobStore
	Extractor driven.TextExtractor // Used when a PDF has no stored text yet
	Logger    *slog.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(cfg SearchServiceConfig) driving.SearchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &searchService{
		documents: cfg.Documents,
		indexer: &textIndexer{
			docs:      cfg.Documents,
			blobs:     cfg.Blobs,
			extractor: cfg.Extractor,
			logger:    logger,
		},
		logger: logger,
	}
}

// Search finds every occurrence of query in one of the user's documents
func (s *searchService) Search(ctx context.Context, userID, documentID, query string) (*domain.SearchResult, error) {
	start := time.Now()

	doc, err := ownedDocument(ctx, s.documents, userID, documentID)
	if err != nil {
		return nil, err
	}

	result := &domain.SearchResult{Query: query, Matches: []domain.Match{}}
	if query == "" {
		return result, nil
	}

	text, err := s.indexer.ensure(ctx, doc)
	if err != nil {
		return result, err
	}

	result.Matches = domain.SearchText(text, query)

	s.logger.Debug("document searched",
		"document_id", documentID,
		"matches", len(result.Matches),
		"took", time.Since(start))
	return result, nil
}
