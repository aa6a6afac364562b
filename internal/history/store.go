package history

import (
	"errors"
	"fmt"

	"scrollkeep/internal/blockstore"
	"scrollkeep/internal/cell"
	"scrollkeep/internal/lineindex"
	"scrollkeep/internal/logger"

	"github.com/google/uuid"
)

// StoreOptions configures the disk-spillable scroll.
type StoreOptions struct {
	MaxLines       int   // 0 means unbounded
	SpillThreshold int64 // per backing blockstore; 0 means the default
	SpillDir       string
	Log            *logger.LogEntry
}

// Store is the unbounded, disk-spillable Scroll implementation: one cell
// blockstore holding an append-only cell log, plus a lineindex carrying the
// logical order. New or rewritten line content is always appended at the
// cell-store tail; positional mutation only touches index records, so a
// mid-history insert never moves cell bytes.
type Store struct {
	cells   *blockstore.Store
	index   *lineindex.Index
	staging []cell.Cell

	maxLines int
	// ordered tracks whether descriptor offsets still ascend with line
	// number. Streaming appends and removals preserve it; a mid-history
	// insert or rewrite breaks it, after which eviction stops advancing
	// the cell-store floor (stale bytes wait for the spill file teardown).
	ordered bool

	log *logger.LogEntry
	id  string
}

var _ Scroll = (*Store)(nil)

// NewStore constructs an empty disk-spillable scroll.
func NewStore(opts StoreOptions) *Store {
	log := opts.Log
	if log == nil {
		log = logger.Named("history")
	}
	id := uuid.NewString()
	log = log.WithField("store_id", id)
	bsOpts := blockstore.Options{
		SpillThreshold: opts.SpillThreshold,
		SpillDir:       opts.SpillDir,
		Log:            log,
	}
	maxLines := opts.MaxLines
	if maxLines < 0 {
		maxLines = 0
	}
	return &Store{
		cells:    blockstore.New(bsOpts),
		index:    lineindex.New(bsOpts),
		maxLines: maxLines,
		ordered:  true,
		log:      log,
		id:       id,
	}
}

// Lines returns the number of committed lines.
func (s *Store) Lines() int {
	return s.index.Count()
}

// MaxLines returns the configured cap; 0 means unbounded.
func (s *Store) MaxLines() int {
	return s.maxLines
}

// LineLen returns the stored cell count of a line.
func (s *Store) LineLen(line int) (int, error) {
	d, err := s.descriptor(line)
	if err != nil {
		return 0, err
	}
	return int(d.Length), nil
}

// IsWrappedLine reports the line's wrap flag.
func (s *Store) IsWrappedLine(line int) (bool, error) {
	d, err := s.descriptor(line)
	if err != nil {
		return false, err
	}
	return d.Wrapped, nil
}

// Cells copies len(dst) cells starting at column col into dst, blank-filling
// past the stored line length.
func (s *Store) Cells(line, col int, dst []cell.Cell) error {
	if col < 0 {
		return ErrOutOfRange
	}
	d, err := s.descriptor(line)
	if err != nil {
		return err
	}
	stored := 0
	if col < int(d.Length) {
		stored = int(d.Length) - col
		if stored > len(dst) {
			stored = len(dst)
		}
		off := int64(d.Offset) + int64(col)*cell.EncodedSize
		buf := make([]byte, stored*cell.EncodedSize)
		if err := s.cells.Read(off, buf); err != nil {
			return fmt.Errorf("%w: line %d cells: %v", ErrCorrupt, line, err)
		}
		cell.DecodeLine(dst[:stored], buf)
	}
	for i := stored; i < len(dst); i++ {
		dst[i] = cell.Blank()
	}
	return nil
}

// AddCells appends to the staging line; no committed line is created.
func (s *Store) AddCells(cells []cell.Cell) {
	s.staging = append(s.staging, cells...)
}

// AddLine commits the staging buffer as a new tail line. A capacity refusal
// from the cell store triggers one aggressive eviction and a retry; if that
// also fails the staged line is dropped and logged, never surfaced as a
// failure to the caller.
func (s *Store) AddLine(previousWrapped bool) error {
	data := cell.EncodeLine(s.staging)
	off, err := s.cells.Append(data)
	if errors.Is(err, blockstore.ErrCapacityExceeded) {
		s.evictTo(s.index.Count() / 2)
		off, err = s.cells.Append(data)
	}
	if err != nil {
		if errors.Is(err, blockstore.ErrCapacityExceeded) {
			s.log.WithField("cells", len(s.staging)).Warn("line dropped: cell store refused growth")
			s.staging = s.staging[:0]
			return nil
		}
		return fmt.Errorf("history: add line: %w", err)
	}
	d := lineindex.Descriptor{
		Offset:  uint64(off),
		Length:  uint32(len(s.staging)),
		Wrapped: previousWrapped,
	}
	if err := s.index.Append(d); err != nil {
		if errors.Is(err, blockstore.ErrCapacityExceeded) {
			s.log.Warn("line dropped: index refused growth")
			s.staging = s.staging[:0]
			return nil
		}
		return fmt.Errorf("history: add line: %w", err)
	}
	s.staging = s.staging[:0]
	s.enforceCap()
	return nil
}

// InsertCells creates a new line at pos: the cell bytes go to the log tail,
// then the descriptor is inserted, shifting pos.. up by one.
func (s *Store) InsertCells(pos int, cells []cell.Cell) error {
	if pos < 0 || pos > s.index.Count() {
		return ErrOutOfRange
	}
	d, err := s.appendLog(cells, false)
	if err != nil {
		return fmt.Errorf("history: insert cells: %w", err)
	}
	if pos < s.index.Count() {
		s.ordered = false
	}
	if err := s.index.InsertAt(pos, d); err != nil {
		return fmt.Errorf("history: insert cells: %w", err)
	}
	s.enforceCap()
	return nil
}

// RemoveCells deletes the line at pos. Its cell bytes become unreachable
// garbage in the log.
func (s *Store) RemoveCells(pos int) error {
	if pos < 0 || pos >= s.index.Count() {
		return ErrOutOfRange
	}
	if err := s.index.RemoveAt(pos); err != nil {
		return fmt.Errorf("history: remove cells: %w", err)
	}
	return nil
}

// SetCellsAt rewrites the line at pos: replacement bytes are appended at the
// log tail and the descriptor is repointed. The wrap flag is preserved.
func (s *Store) SetCellsAt(pos int, cells []cell.Cell) error {
	old, err := s.descriptor(pos)
	if err != nil {
		return err
	}
	d, err := s.appendLog(cells, old.Wrapped)
	if err != nil {
		return fmt.Errorf("history: set cells: %w", err)
	}
	s.ordered = false
	if err := s.index.SetAt(pos, d); err != nil {
		return fmt.Errorf("history: set cells: %w", err)
	}
	return nil
}

// SetLineAt rewrites only the wrap flag; no cell bytes move.
func (s *Store) SetLineAt(pos int, previousWrapped bool) error {
	d, err := s.descriptor(pos)
	if err != nil {
		return err
	}
	d.Wrapped = previousWrapped
	if err := s.index.SetAt(pos, d); err != nil {
		return fmt.Errorf("history: set line: %w", err)
	}
	return nil
}

// SetMaxLines updates the cap live. Lowering it evicts immediately.
func (s *Store) SetMaxLines(n int) {
	if n < 0 {
		n = 0
	}
	s.maxLines = n
	s.enforceCap()
}

// Close releases both backing stores, removing the spill files.
func (s *Store) Close() error {
	err := s.cells.Close()
	if ixErr := s.index.Close(); err == nil {
		err = ixErr
	}
	return err
}

// descriptor fetches and validates the descriptor for a line. Bounds are
// checked here, so a failure from the layers below means corruption.
func (s *Store) descriptor(line int) (lineindex.Descriptor, error) {
	if line < 0 || line >= s.index.Count() {
		return lineindex.Descriptor{}, ErrOutOfRange
	}
	d, err := s.index.Get(line)
	if err != nil {
		return lineindex.Descriptor{}, fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
	}
	end := int64(d.Offset) + int64(d.Length)*cell.EncodedSize
	if end > s.cells.Len() || int64(d.Offset) < s.cells.Floor() {
		s.log.WithField("type", "store.corrupt").WithField("line", line).Error("descriptor points outside cell store")
		return lineindex.Descriptor{}, fmt.Errorf("%w: line %d descriptor out of store", ErrCorrupt, line)
	}
	return d, nil
}

func (s *Store) appendLog(cells []cell.Cell, wrapped bool) (lineindex.Descriptor, error) {
	off, err := s.cells.Append(cell.EncodeLine(cells))
	if err != nil {
		return lineindex.Descriptor{}, err
	}
	return lineindex.Descriptor{Offset: uint64(off), Length: uint32(len(cells)), Wrapped: wrapped}, nil
}

// enforceCap drops just enough head lines to return under the cap. Bounded
// per call: no full-store compaction happens here.
func (s *Store) enforceCap() {
	if s.maxLines <= 0 {
		return
	}
	if n := s.index.Count() - s.maxLines; n > 0 {
		s.evictTo(s.maxLines)
		s.log.WithField("type", "store.evicted").WithField("lines", n).Debug("evicted oldest lines")
	}
}

// evictTo drops head lines until at most target remain, then advances the
// cell-store floor when offsets are still in logical order.
func (s *Store) evictTo(target int) {
	if target < 0 {
		target = 0
	}
	n := s.index.Count() - target
	if n <= 0 {
		return
	}
	s.index.DropFront(n)
	if s.index.Count() == 0 {
		s.cells.TruncateFront(s.cells.Len() - s.cells.Floor())
		return
	}
	if !s.ordered {
		return
	}
	if d, err := s.index.Get(0); err == nil && int64(d.Offset) > s.cells.Floor() {
		s.cells.TruncateFront(int64(d.Offset) - s.cells.Floor())
	}
}
