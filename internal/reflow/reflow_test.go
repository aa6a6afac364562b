package reflow

import (
	"testing"

	"scrollkeep/internal/cell"
	"scrollkeep/internal/history"
)

func addLine(t *testing.T, s history.Scroll, text string, cont bool) {
	t.Helper()
	cells := make([]cell.Cell, 0, len(text))
	for _, r := range text {
		cells = append(cells, cell.Cell{Rune: r})
	}
	s.AddCells(cells)
	if err := s.AddLine(cont); err != nil {
		t.Fatalf("AddLine(%q): %v", text, err)
	}
}

func snapshot(t *testing.T, s history.Scroll) []string {
	t.Helper()
	out := make([]string, 0, s.Lines())
	for i := 0; i < s.Lines(); i++ {
		n, err := s.LineLen(i)
		if err != nil {
			t.Fatalf("LineLen(%d): %v", i, err)
		}
		dst := make([]cell.Cell, n)
		if err := s.Cells(i, 0, dst); err != nil {
			t.Fatalf("Cells(%d): %v", i, err)
		}
		runes := make([]rune, 0, n)
		for _, c := range dst {
			if c.IsPlaceholder() {
				runes = append(runes, '.')
				continue
			}
			runes = append(runes, c.Rune)
		}
		cont, err := s.IsWrappedLine(i)
		if err != nil {
			t.Fatalf("IsWrappedLine(%d): %v", i, err)
		}
		mark := " "
		if cont {
			mark = "+"
		}
		out = append(out, mark+string(runes))
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func forEachScroll(t *testing.T, fn func(t *testing.T, s history.Scroll)) {
	t.Helper()
	t.Run("store", func(t *testing.T) {
		t.Parallel()
		s := history.NewStore(history.StoreOptions{SpillThreshold: 64, SpillDir: t.TempDir()})
		defer s.Close()
		fn(t, s)
	})
	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		fn(t, history.NewMemoryScroll(0))
	})
}

func TestToWidthNarrowAndBack(t *testing.T) {
	t.Parallel()
	forEachScroll(t, func(t *testing.T, s history.Scroll) {
		addLine(t, s, "0123456789", false)
		addLine(t, s, "short", false)

		if err := ToWidth(s, 4); err != nil {
			t.Fatalf("ToWidth(4): %v", err)
		}
		// "short" is its own paragraph and wraps independently.
		want := []string{" 0123", "+4567", "+89", " shor", "+t"}
		if got := snapshot(t, s); !equal(got, want) {
			t.Fatalf("after narrow: %q, want %q", got, want)
		}

		if err := ToWidth(s, 40); err != nil {
			t.Fatalf("ToWidth(40): %v", err)
		}
		want = []string{" 0123456789", " short"}
		if got := snapshot(t, s); !equal(got, want) {
			t.Fatalf("after widen: %q, want %q", got, want)
		}
	})
}

func TestToWidthKeepsHardBoundaries(t *testing.T) {
	t.Parallel()
	forEachScroll(t, func(t *testing.T, s history.Scroll) {
		addLine(t, s, "aa", false)
		addLine(t, s, "", false)
		addLine(t, s, "bb", false)

		if err := ToWidth(s, 10); err != nil {
			t.Fatalf("ToWidth: %v", err)
		}
		want := []string{" aa", " ", " bb"}
		if got := snapshot(t, s); !equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	})
}

func TestToWidthJoinsExistingWraps(t *testing.T) {
	t.Parallel()
	forEachScroll(t, func(t *testing.T, s history.Scroll) {
		// A paragraph previously wrapped at width 3.
		addLine(t, s, "abc", false)
		addLine(t, s, "def", true)
		addLine(t, s, "g", true)

		if err := ToWidth(s, 5); err != nil {
			t.Fatalf("ToWidth: %v", err)
		}
		want := []string{" abcde", "+fg"}
		if got := snapshot(t, s); !equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	})
}

func TestToWidthKeepsWideCellPairs(t *testing.T) {
	t.Parallel()
	forEachScroll(t, func(t *testing.T, s history.Scroll) {
		// a, then a wide rune stored as cell+placeholder, then b.
		cells := []cell.Cell{
			{Rune: 'a'},
			{Rune: '界'},
			{}, // placeholder
			{Rune: 'b'},
		}
		s.AddCells(cells)
		if err := s.AddLine(false); err != nil {
			t.Fatalf("AddLine: %v", err)
		}

		if err := ToWidth(s, 2); err != nil {
			t.Fatalf("ToWidth: %v", err)
		}
		// The pair must not straddle a row boundary: row 0 is "a" alone.
		want := []string{" a", "+界.", "+b"}
		if got := snapshot(t, s); !equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	})
}

func TestToWidthDropsTrailingBlanks(t *testing.T) {
	t.Parallel()
	forEachScroll(t, func(t *testing.T, s history.Scroll) {
		// Trailing blanks, e.g. left behind by a \r overwrite of a longer
		// string, must not survive a rewrap.
		cells := append(cellsOf("ok"), cell.Blank(), cell.Blank(), cell.Blank())
		s.AddCells(cells)
		if err := s.AddLine(false); err != nil {
			t.Fatalf("AddLine: %v", err)
		}

		if err := ToWidth(s, 10); err != nil {
			t.Fatalf("ToWidth: %v", err)
		}
		if n, err := s.LineLen(0); err != nil || n != 2 {
			t.Fatalf("LineLen = %d err=%v, want 2", n, err)
		}
		want := []string{" ok"}
		if got := snapshot(t, s); !equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	})
}

func cellsOf(text string) []cell.Cell {
	cells := make([]cell.Cell, 0, len(text))
	for _, r := range text {
		cells = append(cells, cell.Cell{Rune: r})
	}
	return cells
}

func TestToWidthRejectsTinyWidth(t *testing.T) {
	t.Parallel()
	s := history.NewMemoryScroll(0)
	if err := ToWidth(s, 1); err == nil {
		t.Fatal("ToWidth(1) succeeded, want error")
	}
}
