package view

import (
	"strings"
	"unicode/utf8"
)

// Segment is a run of text that either matches the search query or not.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text around the first case-insensitive occurrence of
// query. Without a query or a match the whole text is one plain segment.
func Highlight(text, query string) []Segment {
	query = NormalizeQuery(query)
	if query == "" || text == "" {
		return []Segment{{Text: text}}
	}

	start, end := findFold(text, query)
	if start < 0 {
		return []Segment{{Text: text}}
	}

	var segs []Segment
	if start > 0 {
		segs = append(segs, Segment{Text: text[:start]})
	}
	segs = append(segs, Segment{Text: text[start:end], Match: true})
	if end < len(text) {
		segs = append(segs, Segment{Text: text[end:]})
	}
	return segs
}

// findFold returns the byte range of the first substring of text that
// case-folds to query, or -1, -1. Offsets index the original text, so
// case mappings that change byte length do not shift the match.
func findFold(text, query string) (int, int) {
	qRunes := utf8.RuneCountInString(query)
	for start := 0; start < len(text); {
		end := start
		for n := 0; n < qRunes && end < len(text); n++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		if strings.EqualFold(text[start:end], query) {
			return start, end
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		start += size
	}
	return -1, -1
}

// Render joins the segments, passing matches through mark.
func Render(segs []Segment, mark func(string) string) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Match && mark != nil {
			b.WriteString(mark(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}
