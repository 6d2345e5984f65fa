package driven

import (
	"context"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

// TextExtractor turns file bytes into page-delimited text.
// Failures are reported through domain.Extraction.Reason, never as an error.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) domain.Extraction
}
