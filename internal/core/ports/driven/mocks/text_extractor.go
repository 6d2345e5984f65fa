package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
)

var _ driven.TextExtractor = (*MockTextExtractor)(nil)

// MockTextExtractor returns a canned extraction and counts calls
type MockTextExtractor struct {
	mu     sync.Mutex
	calls  int
	Result domain.Extraction

	// ExtractFn overrides Result when set
	ExtractFn func(data []byte) domain.Extraction
}

// NewMockTextExtractor creates an extractor that yields the given pages
func NewMockTextExtractor(pages ...domain.PageText) *MockTextExtractor {
	return &MockTextExtractor{Result: domain.NewExtraction(pages)}
}

func (m *MockTextExtractor) Extract(ctx context.Context, data []byte) domain.Extraction {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ExtractFn != nil {
		return m.ExtractFn(data)
	}
	return m.Result
}

// Calls returns how often Extract ran
func (m *MockTextExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
