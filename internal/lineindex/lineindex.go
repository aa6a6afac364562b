// Package lineindex maintains the ordered sequence of fixed-size line
// descriptors that maps a logical line number to a byte range in the cell
// store. Records live in a blockstore so the index itself can spill.
package lineindex

import (
	"encoding/binary"
	"errors"
	"fmt"

	"scrollkeep/internal/blockstore"
)

// recordSize is the packed width of one descriptor: offset uint64,
// length uint32, wrapped byte.
const recordSize = 13

var (
	// ErrOutOfRange reports a line number at or beyond Count.
	ErrOutOfRange = errors.New("lineindex: line out of range")
	// ErrCorrupt reports an index whose backing bytes are inconsistent.
	ErrCorrupt = errors.New("lineindex: corrupt index")
)

// Descriptor locates one logical line in the cell store.
type Descriptor struct {
	Offset  uint64 // byte offset into the cell store
	Length  uint32 // cell count for the line
	Wrapped bool   // soft continuation of the previous line
}

// Index is the ordered descriptor sequence.
type Index struct {
	recs *blockstore.Store
	// base is the offset of record 0 inside recs; it advances on DropFront.
	base  int64
	count int
}

// New constructs an empty index over its own record store.
func New(opts blockstore.Options) *Index {
	return &Index{recs: blockstore.New(opts)}
}

// Count returns the number of descriptors.
func (ix *Index) Count() int {
	return ix.count
}

// Get returns the descriptor for the given line number.
func (ix *Index) Get(line int) (Descriptor, error) {
	if line < 0 || line >= ix.count {
		return Descriptor{}, ErrOutOfRange
	}
	var buf [recordSize]byte
	if err := ix.recs.Read(ix.recOff(line), buf[:]); err != nil {
		return Descriptor{}, fmt.Errorf("%w: record %d: %v", ErrCorrupt, line, err)
	}
	return decode(buf[:]), nil
}

// Append adds a descriptor at the tail.
func (ix *Index) Append(d Descriptor) error {
	var buf [recordSize]byte
	encode(buf[:], d)
	// Records removed from the tail leave stale bytes behind; reuse them
	// before growing the store.
	if top := ix.recOff(ix.count); top+recordSize <= ix.recs.Len() {
		if err := ix.recs.Write(top, buf[:]); err != nil {
			return fmt.Errorf("lineindex: append: %w", err)
		}
	} else if _, err := ix.recs.Append(buf[:]); err != nil {
		return fmt.Errorf("lineindex: append: %w", err)
	}
	ix.count++
	return nil
}

// InsertAt places d at line, shifting every descriptor at or after line up
// by one position. line may equal Count, which is an append.
func (ix *Index) InsertAt(line int, d Descriptor) error {
	if line < 0 || line > ix.count {
		return ErrOutOfRange
	}
	if line == ix.count {
		return ix.Append(d)
	}
	tail := make([]byte, (ix.count-line)*recordSize)
	if err := ix.recs.Read(ix.recOff(line), tail); err != nil {
		return fmt.Errorf("%w: insert shift: %v", ErrCorrupt, err)
	}
	// Grow by one record, then rewrite the shifted tail over it.
	if err := ix.Append(decode(tail[len(tail)-recordSize:])); err != nil {
		return err
	}
	if err := ix.recs.Write(ix.recOff(line+1), tail); err != nil {
		return fmt.Errorf("lineindex: insert: %w", err)
	}
	return ix.SetAt(line, d)
}

// RemoveAt deletes the descriptor at line, shifting later descriptors down.
func (ix *Index) RemoveAt(line int) error {
	if line < 0 || line >= ix.count {
		return ErrOutOfRange
	}
	if n := ix.count - line - 1; n > 0 {
		tail := make([]byte, n*recordSize)
		if err := ix.recs.Read(ix.recOff(line+1), tail); err != nil {
			return fmt.Errorf("%w: remove shift: %v", ErrCorrupt, err)
		}
		if err := ix.recs.Write(ix.recOff(line), tail); err != nil {
			return fmt.Errorf("lineindex: remove: %w", err)
		}
	}
	ix.count--
	return nil
}

// SetAt overwrites the descriptor at line in place.
func (ix *Index) SetAt(line int, d Descriptor) error {
	if line < 0 || line >= ix.count {
		return ErrOutOfRange
	}
	var buf [recordSize]byte
	encode(buf[:], d)
	if err := ix.recs.Write(ix.recOff(line), buf[:]); err != nil {
		return fmt.Errorf("lineindex: set: %w", err)
	}
	return nil
}

// DropFront removes the first n descriptors. Used for cap enforcement.
func (ix *Index) DropFront(n int) {
	if n <= 0 {
		return
	}
	if n > ix.count {
		n = ix.count
	}
	ix.recs.TruncateFront(ix.recOff(n) - ix.recs.Floor())
	ix.base += int64(n) * recordSize
	ix.count -= n
}

// Close releases the record store.
func (ix *Index) Close() error {
	return ix.recs.Close()
}

func (ix *Index) recOff(line int) int64 {
	return ix.base + int64(line)*recordSize
}

func encode(dst []byte, d Descriptor) {
	binary.LittleEndian.PutUint64(dst[0:8], d.Offset)
	binary.LittleEndian.PutUint32(dst[8:12], d.Length)
	dst[12] = 0
	if d.Wrapped {
		dst[12] = 1
	}
}

func decode(src []byte) Descriptor {
	return Descriptor{
		Offset:  binary.LittleEndian.Uint64(src[0:8]),
		Length:  binary.LittleEndian.Uint32(src[8:12]),
		Wrapped: src[12] != 0,
	}
}
