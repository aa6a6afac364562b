package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"scrollkeep/internal/cell"
	"scrollkeep/internal/lineindex"
)

func TestStoreSpillEndToEnd(t *testing.T) {
	t.Parallel()

	// A threshold smaller than one encoded line forces a spill on every
	// commit; content must read back identically.
	s := NewStore(StoreOptions{SpillThreshold: 8, SpillDir: t.TempDir()})
	defer s.Close()

	const n = 50
	for i := 0; i < n; i++ {
		addLine(t, s, fmt.Sprintf("line-%02d", i), false)
	}
	if got := s.Lines(); got != n {
		t.Fatalf("Lines() = %d, want %d", got, n)
	}
	for i := 0; i < n; i++ {
		if got, want := textOf(t, s, i), fmt.Sprintf("line-%02d", i); got != want {
			t.Fatalf("line %d = %q, want %q", i, got, want)
		}
	}
}

func TestStoreDegradedKeepsServing(t *testing.T) {
	t.Parallel()

	// Point the spill directory somewhere that cannot exist: the first spill
	// fails, the store degrades, and writes keep landing until the resident
	// ceiling (2x threshold) triggers eviction instead of errors.
	dir := filepath.Join(t.TempDir(), "missing", "nested")
	s := NewStore(StoreOptions{SpillThreshold: 64, SpillDir: dir})
	defer s.Close()

	for i := 0; i < 200; i++ {
		addLine(t, s, fmt.Sprintf("deg-%03d", i), false)
	}
	if s.Lines() == 0 {
		t.Fatal("degraded store retained no lines")
	}
	// Newest lines survive; oldest retained line is readable.
	last := s.Lines() - 1
	if got := textOf(t, s, last); got == "" {
		t.Fatalf("tail line unreadable: %q", got)
	}
	if _, err := s.LineLen(0); err != nil {
		t.Fatalf("LineLen(0) after degrade: %v", err)
	}
}

func TestStoreInsertIntoSpilledHistory(t *testing.T) {
	t.Parallel()

	// With a tiny threshold both the cell log and the index live almost
	// entirely in their spill files; a mid-history insert rewrites index
	// records that are fully on disk.
	s := NewStore(StoreOptions{SpillThreshold: 32, SpillDir: t.TempDir()})
	defer s.Close()

	const n = 40
	for i := 0; i < n; i++ {
		addLine(t, s, fmt.Sprintf("line-%02d", i), false)
	}
	if err := s.InsertCells(5, cellsOf("inserted")); err != nil {
		t.Fatalf("InsertCells: %v", err)
	}
	if got := s.Lines(); got != n+1 {
		t.Fatalf("Lines() = %d, want %d", got, n+1)
	}
	if got := textOf(t, s, 5); got != "inserted" {
		t.Fatalf("line 5 = %q", got)
	}
	if got := textOf(t, s, 6); got != "line-05" {
		t.Fatalf("line 6 = %q, want shifted line-05", got)
	}
	if got := textOf(t, s, n); got != fmt.Sprintf("line-%02d", n-1) {
		t.Fatalf("tail line = %q", got)
	}
}

func TestStoreCorruptDescriptor(t *testing.T) {
	t.Parallel()

	s := NewStore(StoreOptions{SpillDir: t.TempDir()})
	defer s.Close()
	addLine(t, s, "healthy", false)

	// Repoint the descriptor far past the cell log.
	if err := s.index.SetAt(0, lineindex.Descriptor{Offset: 1 << 40, Length: 10}); err != nil {
		t.Fatalf("SetAt: %v", err)
	}
	if _, err := s.LineLen(0); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("LineLen on corrupt descriptor: %v, want ErrCorrupt", err)
	}
	dst := make([]cell.Cell, 4)
	if err := s.Cells(0, 0, dst); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Cells on corrupt descriptor: %v, want ErrCorrupt", err)
	}
}

func TestStoreOrderedEvictionReclaimsBytes(t *testing.T) {
	t.Parallel()

	s := NewStore(StoreOptions{MaxLines: 4, SpillDir: t.TempDir()})
	defer s.Close()

	for i := 0; i < 20; i++ {
		addLine(t, s, fmt.Sprintf("%02d", i), false)
	}
	// Pure appends keep offsets ordered, so eviction advances the floor.
	if s.cells.Floor() == 0 {
		t.Fatal("floor did not advance under ordered eviction")
	}

	// A mid-history rewrite breaks the order; further eviction must not
	// advance the floor past live bytes.
	if err := s.SetCellsAt(1, cellsOf("rewritten")); err != nil {
		t.Fatalf("SetCellsAt: %v", err)
	}
	floor := s.cells.Floor()
	for i := 0; i < 10; i++ {
		addLine(t, s, fmt.Sprintf("x%02d", i), false)
	}
	if got := s.cells.Floor(); got != floor {
		t.Fatalf("floor moved after order break: %d -> %d", floor, got)
	}
	for i := 0; i < s.Lines(); i++ {
		if _, err := s.LineLen(i); err != nil {
			t.Fatalf("line %d unreadable after eviction: %v", i, err)
		}
	}
}
