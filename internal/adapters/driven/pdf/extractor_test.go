package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docledger/internal/core/domain"
)

func newTestExtractor() *Extractor {
	return NewExtractor(Config{
		PageTimeout: 10 * time.Second,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// buildPDF writes a minimal PDF with one Helvetica text line per page.
// An empty string produces a page without content.
func buildPDF(pageTexts ...string) []byte {
	var objects []string
	n := len(pageTexts)
	// 1: catalog, 2: pages, 3: font, then page/content pairs
	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pageTexts {
		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"not a pdf", []byte("just some plain text")},
		{"png header", []byte("\x89PNG\r\n\x1a\n0000")},
		{"truncated pdf", []byte("%PDF-1.4\n1 0 obj\n<< /Type")},
		{"garbage after header", []byte("%PDF-\x00\xff\xfe garbage garbage")},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result domain.Extraction
			require.NotPanics(t, func() {
				result = e.Extract(context.Background(), tt.data)
			})
			assert.True(t, result.Empty())
			assert.Empty(t, result.Pages)
		})
	}
}

func TestExtract_ReasonForRejectedInput(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract(context.Background(), nil)
	assert.False(t, result.OK())
	assert.Equal(t, "empty input", result.Reason)

	result = e.Extract(context.Background(), []byte("hello"))
	assert.False(t, result.OK())
	assert.Contains(t, result.Reason, "%PDF-")
}

func TestExtract_PagesWithText(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract(context.Background(), buildPDF("The cat sat", "", "Another cat"))
	require.True(t, result.OK(), result.Reason)
	require.Len(t, result.Pages, 2)

	assert.Equal(t, 1, result.Pages[0].Page)
	assert.Contains(t, result.Pages[0].Text, "The cat sat")
	assert.Equal(t, 3, result.Pages[1].Page)
	assert.Contains(t, result.Pages[1].Text, "Another cat")

	assert.True(t, strings.HasPrefix(result.Text, domain.PageMarker(1)))
	assert.Contains(t, result.Text, domain.PageMarker(3))
	assert.NotContains(t, result.Text, domain.PageMarker(2))
}

func TestExtract_RoundTripsThroughParser(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract(context.Background(), buildPDF("alpha", "beta"))
	require.True(t, result.OK(), result.Reason)

	parsed := domain.ParsePages(result.Text)
	require.Len(t, parsed, len(result.Pages))
	for i := range result.Pages {
		assert.Equal(t, result.Pages[i].Page, parsed[i].Page)
		assert.Contains(t, parsed[i].Text, result.Pages[i].Text)
	}
}

func TestExtract_OnlyBlankPages(t *testing.T) {
	e := newTestExtractor()

	result := e.Extract(context.Background(), buildPDF("", ""))
	assert.True(t, result.OK())
	assert.True(t, result.Empty())
	assert.Nil(t, result.Pages)
}

func TestExtract_CancelledContext(t *testing.T) {
	e := newTestExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := e.Extract(ctx, buildPDF("text"))
	assert.False(t, result.OK())
	assert.True(t, result.Empty())
}

func TestNewExtractor_Defaults(t *testing.T) {
	e := NewExtractor(Config{})
	assert.Equal(t, DefaultPageTimeout, e.pageTimeout)
	assert.NotNil(t, e.logger)
}
