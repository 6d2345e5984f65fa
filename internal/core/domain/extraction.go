package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pageMarkerPattern matches the boundary written in front of every page of text
var pageMarkerPattern = regexp.MustCompile(`--- PAGE (\d+) ---\n\n`)

// PageText is the text extracted from a single page (1-indexed)
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Extraction is the result of running a file through a text extractor.
// A failed extraction carries a Reason and no text; it is a value, not an error.
type Extraction struct {
	Text   string     `json:"text"`
	Pages  []PageText `json:"pages"`
	Reason string     `json:"reason,omitempty"`
}

// OK reports whether the extraction completed
func (e Extraction) OK() bool {
	return e.Reason == ""
}

// Empty reports whether no searchable text came out of the extraction
func (e Extraction) Empty() bool {
	return e.Text == ""
}

// FailedExtraction builds the trivial result for a failure
func FailedExtraction(format string, args ...any) Extraction {
	return Extraction{Reason: fmt.Sprintf(format, args...)}
}

// NewExtraction builds an extraction from per-page text, skipping empty pages
func NewExtraction(pages []PageText) Extraction {
	kept := make([]PageText, 0, len(pages))
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return Extraction{}
	}
	return Extraction{Text: FormatPages(kept), Pages: kept}
}

// PageMarker returns the boundary that precedes page n in page-delimited text
func PageMarker(n int) string {
	return fmt.Sprintf("\n\n--- PAGE %d ---\n\n", n)
}

// FormatPages concatenates pages into page-delimited text
func FormatPages(pages []PageText) string {
	var b strings.Builder
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		b.WriteString(PageMarker(p.Page))
		b.WriteString(p.Text)
	}
	return b.String()
}

// ParsePages splits page-delimited text back into pages.
// Text before the first marker is not attributed to any page and is dropped.
func ParsePages(text string) []PageText {
	locs := pageMarkerPattern.FindAllStringSubmatchIndex(text, -1)
	pages := make([]PageText, 0, len(locs))
	for i, loc := range locs {
		page, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pages = append(pages, PageText{Page: page, Text: text[loc[1]:end]})
	}
	return pages
}
