// Package emu feeds raw terminal output bytes into a scrollback scroll. It
// implements the small slice of emulation the history store cares about:
// UTF-8 decoding across chunk boundaries, line discipline (\n commits, \r
// rewinds the column), soft wrapping at the configured width, and the SGR
// subset that maps onto the stored cell format. Cursor movement and other
// control sequences are consumed and dropped.
package emu

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"scrollkeep/internal/cell"
	"scrollkeep/internal/history"
)

type state int

const (
	stGround state = iota
	stEsc
	stCSI
	stOSC
	stOSCEsc
)

// Feeder is an io.Writer accepting a raw pty byte stream and committing
// finished lines to the underlying scroll. Single-owner, like the scroll.
type Feeder struct {
	scroll history.Scroll
	width  int

	line []cell.Cell // in-progress line, mutable via \r
	col  int
	cont bool // current line is a soft continuation

	fg   cell.Color
	bg   cell.Color
	attr cell.Rendition

	partial []byte // trailing incomplete UTF-8 sequence
	st      state
	csi     []byte
}

// NewFeeder wires a feeder to a scroll. width is the wrap column; values
// below 2 fall back to 80.
func NewFeeder(s history.Scroll, width int) *Feeder {
	if width < 2 {
		width = 80
	}
	return &Feeder{scroll: s, width: width}
}

// Write consumes a chunk of terminal output. The returned error comes from
// committing lines to the scroll; the byte count is always len(p).
func (f *Feeder) Write(p []byte) (int, error) {
	data := p
	if len(f.partial) > 0 {
		data = append(f.partial, p...)
		f.partial = nil
	}
	for len(data) > 0 {
		if f.st != stGround {
			data = f.consumeEscape(data)
			continue
		}
		b := data[0]
		switch {
		case b == 0x1b:
			f.st = stEsc
			data = data[1:]
		case b == '\n':
			data = data[1:]
			if err := f.commit(false); err != nil {
				return len(p), err
			}
		case b == '\r':
			f.col = 0
			data = data[1:]
		case b == '\b':
			if f.col > 0 {
				f.col--
			}
			data = data[1:]
		case b == '\t':
			data = data[1:]
			next := (f.col/8 + 1) * 8
			for f.col < next && f.col < f.width {
				if err := f.putRune(' ', 1); err != nil {
					return len(p), err
				}
			}
		case b < 0x20 || b == 0x7f:
			data = data[1:] // other C0 controls carry no cells
		default:
			r, size := utf8.DecodeRune(data)
			if r == utf8.RuneError && size == 1 {
				if !utf8.FullRune(data) {
					// Incomplete tail; wait for the next chunk.
					f.partial = append(f.partial, data...)
					return len(p), nil
				}
				data = data[1:] // invalid byte, drop
				continue
			}
			data = data[size:]
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue // combining marks are not stored separately
			}
			if err := f.putRune(r, w); err != nil {
				return len(p), err
			}
		}
	}
	return len(p), nil
}

// Flush commits the in-progress line, if any. Call once the stream ends.
func (f *Feeder) Flush() error {
	if len(f.line) == 0 && f.col == 0 {
		return nil
	}
	return f.commit(false)
}

func (f *Feeder) putRune(r rune, w int) error {
	if f.col+w > f.width {
		// Soft wrap: the next line continues this one.
		if err := f.commit(true); err != nil {
			return err
		}
	}
	c := cell.Cell{Rune: r, FG: f.fg, BG: f.bg, Attr: f.attr}
	f.putCell(f.col, c)
	if w == 2 {
		f.putCell(f.col+1, cell.Cell{FG: f.fg, BG: f.bg, Attr: f.attr})
	}
	f.col += w
	return nil
}

func (f *Feeder) putCell(col int, c cell.Cell) {
	for len(f.line) <= col {
		f.line = append(f.line, cell.Blank())
	}
	f.line[col] = c
}

// commit pushes the current line into the scroll. nextCont marks whether the
// following line is a soft continuation.
func (f *Feeder) commit(nextCont bool) error {
	f.scroll.AddCells(f.line)
	err := f.scroll.AddLine(f.cont)
	f.line = f.line[:0]
	f.col = 0
	f.cont = nextCont
	return err
}

func (f *Feeder) consumeEscape(data []byte) []byte {
	for len(data) > 0 {
		b := data[0]
		data = data[1:]
		switch f.st {
		case stEsc:
			switch b {
			case '[':
				f.st = stCSI
				f.csi = f.csi[:0]
			case ']':
				f.st = stOSC
			default:
				f.st = stGround // two-byte escape, ignored
				return data
			}
		case stCSI:
			if b >= 0x40 && b <= 0x7e {
				if b == 'm' {
					f.applySGR(string(f.csi))
				}
				f.st = stGround
				return data
			}
			f.csi = append(f.csi, b)
		case stOSC:
			if b == 0x07 {
				f.st = stGround
				return data
			}
			if b == 0x1b {
				f.st = stOSCEsc
			}
		case stOSCEsc:
			if b == '\\' {
				f.st = stGround
				return data
			}
			f.st = stOSC
		}
	}
	return data
}

// applySGR interprets the rendition subset the cell format can hold.
func (f *Feeder) applySGR(raw string) {
	params := strings.Split(raw, ";")
	if raw == "" {
		params = []string{"0"}
	}
	for i := 0; i < len(params); i++ {
		n, err := strconv.Atoi(params[i])
		if err != nil && params[i] != "" {
			continue
		}
		switch {
		case n == 0:
			f.fg, f.bg, f.attr = 0, 0, 0
		case n == 1:
			f.attr |= cell.Bold
		case n == 4:
			f.attr |= cell.Underline
		case n == 5:
			f.attr |= cell.Blink
		case n == 7:
			f.attr |= cell.Reverse
		case n == 22:
			f.attr &^= cell.Bold
		case n == 24:
			f.attr &^= cell.Underline
		case n == 25:
			f.attr &^= cell.Blink
		case n == 27:
			f.attr &^= cell.Reverse
		case n >= 30 && n <= 37:
			f.fg = cell.Indexed(uint8(n - 30))
		case n >= 90 && n <= 97:
			f.fg = cell.Indexed(uint8(n - 90 + 8))
		case n == 39:
			f.fg = 0
		case n >= 40 && n <= 47:
			f.bg = cell.Indexed(uint8(n - 40))
		case n >= 100 && n <= 107:
			f.bg = cell.Indexed(uint8(n - 100 + 8))
		case n == 49:
			f.bg = 0
		case n == 38 || n == 48:
			color, skip := parseExtColor(params[i+1:])
			if skip == 0 {
				return // malformed, drop the rest
			}
			if n == 38 {
				f.fg = color
			} else {
				f.bg = color
			}
			i += skip
		}
	}
}

// parseExtColor parses the tail of a 38/48 sequence: "5;n" or "2;r;g;b".
// It returns the parsed color and how many params were consumed.
func parseExtColor(rest []string) (cell.Color, int) {
	if len(rest) == 0 {
		return 0, 0
	}
	switch rest[0] {
	case "5":
		if len(rest) < 2 {
			return 0, 0
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil || n < 0 || n > 255 {
			return 0, 0
		}
		return cell.Indexed(uint8(n)), 2
	case "2":
		if len(rest) < 4 {
			return 0, 0
		}
		var v [3]int
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(rest[1+i])
			if err != nil || n < 0 || n > 255 {
				return 0, 0
			}
			v[i] = n
		}
		return cell.RGB(uint8(v[0]), uint8(v[1]), uint8(v[2])), 4
	}
	return 0, 0
}
