// Package reflow rewraps scrollback content after a terminal resize. Soft
// continuation runs are joined back into paragraphs and re-split at the new
// width using only the scroll's positional mutations, so content never leaves
// the store as a whole.
package reflow

import (
	"fmt"

	"scrollkeep/internal/cell"
	"scrollkeep/internal/history"
)

// ToWidth rewraps every soft-wrapped paragraph in s to the given width. Lines
// ending in a hard newline keep their boundaries. width must be at least 2 so
// a wide cell and its placeholder always fit together.
func ToWidth(s history.Scroll, width int) error {
	if width < 2 {
		return fmt.Errorf("reflow: width %d too small", width)
	}
	for start := 0; start < s.Lines(); {
		end, err := paragraphEnd(s, start)
		if err != nil {
			return err
		}
		next, err := rewrap(s, start, end, width)
		if err != nil {
			return err
		}
		start = next
	}
	return nil
}

// paragraphEnd returns the index one past the last line of the soft-wrapped
// run starting at start.
func paragraphEnd(s history.Scroll, start int) (int, error) {
	end := start + 1
	for end < s.Lines() {
		cont, err := s.IsWrappedLine(end)
		if err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
		if !cont {
			break
		}
		end++
	}
	return end, nil
}

// rewrap replaces lines [start,end) with the paragraph re-split at width and
// returns the index of the first line after the paragraph. When the scroll is
// capped, a growing paragraph may evict head lines mid-rewrap; positions are
// shifted accordingly.
func rewrap(s history.Scroll, start, end, width int) (int, error) {
	var para []cell.Cell
	for i := start; i < end; i++ {
		n, err := s.LineLen(i)
		if err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
		row := make([]cell.Cell, n)
		if err := s.Cells(i, 0, row); err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
		para = append(para, row...)
	}
	// Trailing blank padding is an artifact of the recorded width; it is not
	// carried into the rewrapped rows.
	for len(para) > 0 && para[len(para)-1] == cell.Blank() {
		para = para[:len(para)-1]
	}
	firstCont, err := s.IsWrappedLine(start)
	if err != nil {
		return 0, fmt.Errorf("reflow: %w", err)
	}

	chunks := split(para, width)
	old := end - start

	// Overwrite the overlap in place.
	for i := 0; i < old && i < len(chunks); i++ {
		if err := s.SetCellsAt(start+i, chunks[i]); err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
		if err := s.SetLineAt(start+i, i > 0 || firstCont); err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
	}
	// Narrower: the paragraph grew, insert the tail chunks.
	for i := old; i < len(chunks); i++ {
		before := s.Lines()
		if err := s.InsertCells(start+i, chunks[i]); err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
		if evicted := before + 1 - s.Lines(); evicted > 0 {
			start -= evicted
		}
		if err := s.SetLineAt(start+i, true); err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
	}
	// Wider: the paragraph shrank, drop the leftover lines.
	for i := old; i > len(chunks); i-- {
		if err := s.RemoveCells(start + len(chunks)); err != nil {
			return 0, fmt.Errorf("reflow: %w", err)
		}
	}
	next := start + len(chunks)
	if next < 0 {
		next = 0
	}
	return next, nil
}

// split cuts a paragraph into rows of at most width cells, never separating a
// wide cell from its trailing placeholder.
func split(para []cell.Cell, width int) [][]cell.Cell {
	if len(para) == 0 {
		return [][]cell.Cell{nil}
	}
	var chunks [][]cell.Cell
	for len(para) > 0 {
		cut := width
		if cut >= len(para) {
			cut = len(para)
		} else if para[cut].IsPlaceholder() {
			cut--
		}
		chunks = append(chunks, para[:cut])
		para = para[cut:]
	}
	return chunks
}
