// Package cell defines the fixed-format terminal cell shared by the history
// store, the feeder and the renderer, together with its binary codec.
package cell

// Rendition is the bit-set of visual attributes attached to a cell.
type Rendition uint8

const (
	Bold Rendition = 1 << iota
	Underline
	Blink
	Reverse
	Cursor
)

// Has reports whether all bits of r2 are set in r.
func (r Rendition) Has(r2 Rendition) bool {
	return r&r2 == r2
}

// ColorMode selects how a Color's payload is interpreted.
type ColorMode uint8

const (
	ModeDefault ColorMode = iota // terminal default fg/bg, payload unused
	ModeIndexed                  // 256-color palette index in the low byte
	ModeRGB                      // direct color, payload is 0xRRGGBB
)

// Color is a packed color descriptor: mode in bits 24..25, payload in the
// low 24 bits. The zero value is the terminal default color.
type Color uint32

const modeShift = 24

// Indexed returns a palette color descriptor for index i.
func Indexed(i uint8) Color {
	return Color(uint32(ModeIndexed)<<modeShift | uint32(i))
}

// RGB returns a direct color descriptor.
func RGB(r, g, b uint8) Color {
	return Color(uint32(ModeRGB)<<modeShift | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Mode returns the descriptor's color mode.
func (c Color) Mode() ColorMode {
	return ColorMode(c >> modeShift & 0x3)
}

// Index returns the palette index. Only meaningful in ModeIndexed.
func (c Color) Index() uint8 {
	return uint8(c)
}

// RGBValues returns the direct color channels. Only meaningful in ModeRGB.
func (c Color) RGBValues() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// IsDefault reports whether the descriptor is the terminal default color.
func (c Color) IsDefault() bool {
	return c.Mode() == ModeDefault
}

// Cell is one fixed-format character position. Rune 0 marks the trailing
// placeholder half of a double-width character.
type Cell struct {
	Rune rune
	FG   Color
	BG   Color
	Attr Rendition
}

// Blank returns an empty cell: space, default colors, no rendition.
func Blank() Cell {
	return Cell{Rune: ' '}
}

// IsPlaceholder reports whether the cell is the trailing half of a
// double-width character.
func (c Cell) IsPlaceholder() bool {
	return c.Rune == 0
}
