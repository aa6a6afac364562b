package tui

import (
	"strconv"
	"strings"

	"scrollkeep/internal/cell"
)

// renderCells turns one stored line into a terminal string, re-emitting SGR
// sequences only when the pen changes between cells.
func renderCells(cells []cell.Cell) string {
	var b strings.Builder
	var pen cell.Cell
	penSet := false
	for _, c := range cells {
		if c.IsPlaceholder() {
			continue
		}
		if !penSet || c.FG != pen.FG || c.BG != pen.BG || c.Attr != pen.Attr {
			b.WriteString(sgr(c))
			pen = c
			penSet = true
		}
		b.WriteRune(c.Rune)
	}
	if penSet {
		b.WriteString("\x1b[0m")
	}
	return b.String()
}

// sgr builds the full escape sequence selecting a cell's rendition. A reset
// is always included so sequences are position independent.
func sgr(c cell.Cell) string {
	codes := []string{"0"}
	if c.Attr&cell.Bold != 0 {
		codes = append(codes, "1")
	}
	if c.Attr&cell.Underline != 0 {
		codes = append(codes, "4")
	}
	if c.Attr&cell.Blink != 0 {
		codes = append(codes, "5")
	}
	if c.Attr&cell.Reverse != 0 {
		codes = append(codes, "7")
	}
	codes = append(codes, colorCodes(c.FG, false)...)
	codes = append(codes, colorCodes(c.BG, true)...)
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorCodes(col cell.Color, background bool) []string {
	switch col.Mode() {
	case cell.ModeIndexed:
		lead := "38"
		if background {
			lead = "48"
		}
		return []string{lead, "5", strconv.Itoa(int(col.Index()))}
	case cell.ModeRGB:
		lead := "38"
		if background {
			lead = "48"
		}
		r, g, b := col.RGBValues()
		return []string{lead, "2", strconv.Itoa(int(r)), strconv.Itoa(int(g)), strconv.Itoa(int(b))}
	default:
		return nil
	}
}
