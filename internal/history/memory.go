package history

import "scrollkeep/internal/cell"

type memLine struct {
	cells   []cell.Cell
	wrapped bool
}

// MemoryScroll is the bounded in-memory Scroll implementation: committed
// lines live in a plain slice trimmed from the front on overflow. Suitable
// for sessions with small caps where spilling buys nothing.
type MemoryScroll struct {
	lines    []memLine
	staging  []cell.Cell
	maxLines int
}

var _ Scroll = (*MemoryScroll)(nil)

// NewMemoryScroll constructs an empty in-memory scroll. maxLines <= 0 means
// unbounded.
func NewMemoryScroll(maxLines int) *MemoryScroll {
	if maxLines < 0 {
		maxLines = 0
	}
	return &MemoryScroll{maxLines: maxLines}
}

func (m *MemoryScroll) Lines() int {
	return len(m.lines)
}

func (m *MemoryScroll) MaxLines() int {
	return m.maxLines
}

func (m *MemoryScroll) LineLen(line int) (int, error) {
	if line < 0 || line >= len(m.lines) {
		return 0, ErrOutOfRange
	}
	return len(m.lines[line].cells), nil
}

func (m *MemoryScroll) IsWrappedLine(line int) (bool, error) {
	if line < 0 || line >= len(m.lines) {
		return false, ErrOutOfRange
	}
	return m.lines[line].wrapped, nil
}

func (m *MemoryScroll) Cells(line, col int, dst []cell.Cell) error {
	if col < 0 {
		return ErrOutOfRange
	}
	if line < 0 || line >= len(m.lines) {
		return ErrOutOfRange
	}
	src := m.lines[line].cells
	stored := 0
	if col < len(src) {
		stored = copy(dst, src[col:])
	}
	for i := stored; i < len(dst); i++ {
		dst[i] = cell.Blank()
	}
	return nil
}

func (m *MemoryScroll) AddCells(cells []cell.Cell) {
	m.staging = append(m.staging, cells...)
}

func (m *MemoryScroll) AddLine(previousWrapped bool) error {
	m.lines = append(m.lines, memLine{cells: cloneCells(m.staging), wrapped: previousWrapped})
	m.staging = m.staging[:0]
	m.enforceCap()
	return nil
}

func (m *MemoryScroll) InsertCells(pos int, cells []cell.Cell) error {
	if pos < 0 || pos > len(m.lines) {
		return ErrOutOfRange
	}
	line := memLine{cells: cloneCells(cells)}
	m.lines = append(m.lines, memLine{})
	copy(m.lines[pos+1:], m.lines[pos:])
	m.lines[pos] = line
	m.enforceCap()
	return nil
}

func (m *MemoryScroll) RemoveCells(pos int) error {
	if pos < 0 || pos >= len(m.lines) {
		return ErrOutOfRange
	}
	copy(m.lines[pos:], m.lines[pos+1:])
	m.lines[len(m.lines)-1] = memLine{}
	m.lines = m.lines[:len(m.lines)-1]
	return nil
}

func (m *MemoryScroll) SetCellsAt(pos int, cells []cell.Cell) error {
	if pos < 0 || pos >= len(m.lines) {
		return ErrOutOfRange
	}
	m.lines[pos].cells = cloneCells(cells)
	return nil
}

func (m *MemoryScroll) SetLineAt(pos int, previousWrapped bool) error {
	if pos < 0 || pos >= len(m.lines) {
		return ErrOutOfRange
	}
	m.lines[pos].wrapped = previousWrapped
	return nil
}

func (m *MemoryScroll) SetMaxLines(n int) {
	if n < 0 {
		n = 0
	}
	m.maxLines = n
	m.enforceCap()
}

func (m *MemoryScroll) Close() error {
	m.lines = nil
	m.staging = nil
	return nil
}

func (m *MemoryScroll) enforceCap() {
	if m.maxLines <= 0 {
		return
	}
	if excess := len(m.lines) - m.maxLines; excess > 0 {
		// Help GC before sliding the window.
		for i := 0; i < excess; i++ {
			m.lines[i] = memLine{}
		}
		m.lines = append(m.lines[:0], m.lines[excess:]...)
	}
}

func cloneCells(cells []cell.Cell) []cell.Cell {
	if len(cells) == 0 {
		return nil
	}
	out := make([]cell.Cell, len(cells))
	copy(out, cells)
	return out
}
