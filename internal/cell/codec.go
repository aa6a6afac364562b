package cell

import "encoding/binary"

// EncodedSize is the fixed width of one encoded cell: rune, fg, bg as
// little-endian uint32 plus the rendition byte and three bytes of padding.
const EncodedSize = 16

// Encode writes c into dst[:EncodedSize].
func Encode(dst []byte, c Cell) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(c.Rune))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(c.FG))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(c.BG))
	dst[12] = byte(c.Attr)
	dst[13], dst[14], dst[15] = 0, 0, 0
}

// Decode reads one cell from src[:EncodedSize].
func Decode(src []byte) Cell {
	return Cell{
		Rune: rune(binary.LittleEndian.Uint32(src[0:4])),
		FG:   Color(binary.LittleEndian.Uint32(src[4:8])),
		BG:   Color(binary.LittleEndian.Uint32(src[8:12])),
		Attr: Rendition(src[12]),
	}
}

// EncodeLine encodes cells into a freshly allocated byte record.
func EncodeLine(cells []Cell) []byte {
	buf := make([]byte, len(cells)*EncodedSize)
	for i, c := range cells {
		Encode(buf[i*EncodedSize:], c)
	}
	return buf
}

// DecodeLine decodes len(dst) cells from src. src must hold at least
// len(dst)*EncodedSize bytes.
func DecodeLine(dst []Cell, src []byte) {
	for i := range dst {
		dst[i] = Decode(src[i*EncodedSize:])
	}
}
