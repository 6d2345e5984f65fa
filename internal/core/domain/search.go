package domain

import "unicode"

// PreviewContext is the number of characters shown on each side of a match
const PreviewContext = 50

const ellipsis = "..."

// Match is a single occurrence of a query inside a document
type Match struct {
	Page    int    `json:"page"`
	Text    string `json:"text"` // The query as submitted, not the matched casing
	Preview string `json:"preview"`
}

// SearchResult is the outcome of searching one document
type SearchResult struct {
	Query   string  `json:"-"`
	Matches []Match `json:"matches"`
}

// SearchText finds every non-overlapping, case-insensitive occurrence of query
// in page-delimited text. Matches come back in page order, then left to right.
func SearchText(text, query string) []Match {
	matches := []Match{}
	if query == "" {
		return matches
	}

	needle := lowerRunes([]rune(query))
	for _, page := range ParsePages(text) {
		original := []rune(page.Text)
		haystack := lowerRunes(original)

		for start := 0; start < len(haystack); {
			idx := indexRunes(haystack, needle, start)
			if idx < 0 {
				break
			}
			matches = append(matches, Match{
				Page:    page.Page,
				Text:    query,
				Preview: preview(original, idx, len(needle)),
			})
			start = idx + len(needle)
		}
	}
	return matches
}

// preview cuts PreviewContext characters around a match, clamped to the page
func preview(page []rune, idx, length int) string {
	from := max(0, idx-PreviewContext)
	to := min(len(page), idx+length+PreviewContext)

	out := string(page[from:to])
	if from > 0 {
		out = ellipsis + out
	}
	if to < len(page) {
		out += ellipsis
	}
	return out
}

// lowerRunes folds case rune by rune so offsets line up with the original text
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune, from int) int {
	last := len(haystack) - len(needle)
	for i := from; i <= last; i++ {
		found := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}
