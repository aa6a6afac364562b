// Package search runs fuzzy queries over committed scrollback lines.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"scrollkeep/internal/cell"
	"scrollkeep/internal/history"
)

// Match is one history line matched by a query, best score first.
type Match struct {
	Line      int    // line number in the scroll
	Text      string // the line's text as rendered
	Positions []int  // matched rune indexes into Text
	Score     int
}

// Lines fuzzy-matches query against every committed line and returns up to
// limit matches. limit <= 0 means 200. An empty query matches nothing.
func Lines(s history.Scroll, query string, limit int) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 200
	}
	texts := make([]string, s.Lines())
	for i := range texts {
		text, err := Text(s, i)
		if err != nil {
			return nil, err
		}
		texts[i] = text
	}
	results := fuzzy.Find(query, texts)
	matches := make([]Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, Match{
			Line:      res.Index,
			Text:      texts[res.Index],
			Positions: res.MatchedIndexes,
			Score:     res.Score,
		})
		if len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// Text renders a line's cells as a plain string. Placeholder cells behind
// wide runes are skipped so the text reads naturally.
func Text(s history.Scroll, line int) (string, error) {
	n, err := s.LineLen(line)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	cells := make([]cell.Cell, n)
	if err := s.Cells(line, 0, cells); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range cells {
		if c.IsPlaceholder() {
			continue
		}
		b.WriteRune(c.Rune)
	}
	return b.String(), nil
}
