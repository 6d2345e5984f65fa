package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"

	"github.com/custodia-labs/docledger/internal/core/domain"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextExtractor = (*Extractor)(nil)

// DefaultPageTimeout bounds the extraction of a single page
const DefaultPageTimeout = 30 * time.Second

var pdfHeader = []byte("%PDF-")

// Config holds extractor configuration
type Config struct {
	PageTimeout time.Duration
	Logger      *slog.Logger
}

// Extractor pulls page text out of PDF bytes with MuPDF
type Extractor struct {
	pageTimeout time.Duration
	logger      *slog.Logger
}

// NewExtractor creates a PDF text extractor
func NewExtractor(cfg Config) *Extractor {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultPageTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Extractor{
		pageTimeout: cfg.PageTimeout,
		logger:      cfg.Logger,
	}
}

type pageResult struct {
	text string
	err  error
}

// Extract returns the text of every non-empty page.
// It never panics; failures come back as an Extraction with a Reason.
func (e *Extractor) Extract(ctx context.Context, data []byte) (result domain.Extraction) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pdf extraction panicked", "panic", r)
			result = domain.FailedExtraction("extraction panicked: %v", r)
		}
	}()

	if len(data) == 0 {
		return domain.FailedExtraction("empty input")
	}
	if !bytes.HasPrefix(data, pdfHeader) {
		return domain.FailedExtraction("missing %s header", pdfHeader)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return domain.FailedExtraction("failed to open PDF: %v", err)
	}

	// A page still being read holds the document lock, so Close would block on it
	timedOut := false
	defer func() {
		if timedOut {
			go doc.Close()
			return
		}
		doc.Close()
	}()

	numPages := doc.NumPage()
	pages := make([]domain.PageText, 0, numPages)

	for idx := 0; idx < numPages; idx++ {
		if err := ctx.Err(); err != nil {
			return domain.FailedExtraction("extraction cancelled: %v", err)
		}

		text, err := e.pageText(ctx, doc, idx)
		if errors.Is(err, errPageTimeout) || ctx.Err() != nil {
			timedOut = true
		}
		if err != nil {
			e.logger.Warn("skipping PDF page", "page", idx+1, "total", numPages, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, domain.PageText{Page: idx + 1, Text: text})
	}

	return domain.NewExtraction(pages)
}

var errPageTimeout = errors.New("page extraction timed out")

// pageText reads one page, giving up after the page timeout
func (e *Extractor) pageText(ctx context.Context, doc *fitz.Document, idx int) (string, error) {
	resultCh := make(chan pageResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- pageResult{err: fmt.Errorf("page panicked: %v", r)}
			}
		}()
		t, err := doc.Text(idx)
		resultCh <- pageResult{text: t, err: err}
	}()

	timer := time.NewTimer(e.pageTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		return res.text, res.err
	case <-timer.C:
		return "", errPageTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
