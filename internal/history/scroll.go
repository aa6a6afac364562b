// Package history implements the terminal scrollback line store: an ordered,
// randomly readable and randomly mutable container of fixed-format cells.
// Store spills cold data to disk through a blockstore; MemoryScroll is the
// bounded in-memory alternative. Both satisfy Scroll.
//
// A scroll is single-owner: the emulation engine (writer), the viewport
// renderer (reader) and the reflow logic must share one control flow, and no
// operation may re-enter the scroll while another call is in progress.
package history

import (
	"errors"

	"scrollkeep/internal/cell"
)

var (
	// ErrOutOfRange reports a line or column beyond current bounds. Always
	// recoverable: callers clamp or skip.
	ErrOutOfRange = errors.New("history: line out of range")
	// ErrCorrupt reports a descriptor/byte-store inconsistency. Fatal to
	// the scroll instance: discard it and substitute a fresh empty one.
	ErrCorrupt = errors.New("history: corrupt scroll")
)

// Scroll is the line-store contract consumed by the emulation engine
// (AddCells/AddLine), the viewport renderer (Lines/LineLen/Cells/
// IsWrappedLine) and the resize/reflow logic (the positional mutations).
type Scroll interface {
	// Lines returns the number of committed lines.
	Lines() int
	// MaxLines returns the configured cap; 0 means unbounded.
	MaxLines() int
	// LineLen returns the stored cell count of a line.
	LineLen(line int) (int, error)
	// Cells copies len(dst) cells starting at column col into dst.
	// Requests running past the stored line length are satisfied with
	// blank cells; a viewport is usually wider than the stored line.
	Cells(line, col int, dst []cell.Cell) error
	// IsWrappedLine reports whether the line is a soft continuation of the
	// previous one.
	IsWrappedLine(line int) (bool, error)

	// AddCells appends to the in-progress staging line only.
	AddCells(cells []cell.Cell)
	// AddLine commits the staging buffer as a new line at the tail, tagged
	// with previousWrapped, and enforces the line cap.
	AddLine(previousWrapped bool) error

	// InsertCells creates a new line at pos, shifting pos.. up by one.
	// pos may equal Lines().
	InsertCells(pos int, cells []cell.Cell) error
	// RemoveCells deletes the line at pos, shifting pos+1.. down by one.
	RemoveCells(pos int) error
	// SetCellsAt replaces the content of the line at pos, keeping its wrap
	// flag.
	SetCellsAt(pos int, cells []cell.Cell) error
	// SetLineAt rewrites only the wrap flag of the line at pos.
	SetLineAt(pos int, previousWrapped bool) error

	// SetMaxLines updates the cap live; lowering it evicts immediately.
	SetMaxLines(n int)
	// Close releases any backing resources.
	Close() error
}
