// Package blockstore implements a growable byte store addressed by absolute
// monotonic offsets. Hot bytes stay resident in memory; once the resident
// tail crosses a threshold the cold head is spilled to a private,
// session-scoped temp file. Offsets never shift: a byte keeps its offset for
// the lifetime of the store regardless of where it physically resides.
//
// The store is single-owner: callers must not use one instance from multiple
// goroutines without their own serialization.
package blockstore

import (
	"errors"
	"fmt"
	"os"

	"scrollkeep/internal/logger"

	"github.com/google/uuid"
)

var (
	// ErrOutOfRange reports a read or write past the current length.
	ErrOutOfRange = errors.New("blockstore: offset out of range")
	// ErrEvicted reports access below the TruncateFront floor.
	ErrEvicted = errors.New("blockstore: offset evicted")
	// ErrCapacityExceeded reports that growth is refused because spilling
	// failed and the resident ceiling is reached.
	ErrCapacityExceeded = errors.New("blockstore: capacity exceeded")
)

// DefaultSpillThreshold is the resident size that triggers the first spill.
const DefaultSpillThreshold = 4 << 20

// Options configures a Store.
type Options struct {
	SpillThreshold int64  // resident bytes before spilling; 0 means DefaultSpillThreshold
	SpillDir       string // spill file directory; "" means os.TempDir()
	Log            *logger.LogEntry
}

// Store is a growable, spill-capable byte store.
type Store struct {
	threshold int64
	dir       string
	log       *logger.LogEntry
	id        string

	// Logical layout: [0,fileEnd) lives in the spill file (physical offset
	// = logical - fileBase), [fileEnd, fileEnd+len(mem)) is resident.
	mem      []byte
	file     *os.File
	fileEnd  int64
	fileBase int64

	floor    int64
	degraded bool
}

// New constructs an empty store. No file is created until the first spill.
func New(opts Options) *Store {
	threshold := opts.SpillThreshold
	if threshold <= 0 {
		threshold = DefaultSpillThreshold
	}
	dir := opts.SpillDir
	if dir == "" {
		dir = os.TempDir()
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("blockstore")
	}
	return &Store{
		threshold: threshold,
		dir:       dir,
		log:       log,
		id:        uuid.NewString(),
	}
}

// Len returns the current logical size in bytes.
func (s *Store) Len() int64 {
	return s.fileEnd + int64(len(s.mem))
}

// Floor returns the offset below which bytes are evicted.
func (s *Store) Floor() int64 {
	return s.floor
}

// Spilled reports whether a spill file currently backs the cold head.
func (s *Store) Spilled() bool {
	return s.file != nil
}

// Degraded reports whether the store fell back to memory-only growth.
func (s *Store) Degraded() bool {
	return s.degraded
}

// Append writes p at the current tail and returns the offset at which it
// begins. When the store is degraded and the resident ceiling is reached,
// nothing is written and ErrCapacityExceeded is returned.
func (s *Store) Append(p []byte) (int64, error) {
	if s.degraded && int64(len(s.mem))+int64(len(p)) > 2*s.threshold {
		return 0, ErrCapacityExceeded
	}
	off := s.Len()
	s.mem = append(s.mem, p...)
	if !s.degraded && int64(len(s.mem)) > s.threshold {
		s.spill()
	}
	return off, nil
}

// Read fills dst with an exact copy of the bytes at off. It fails with
// ErrEvicted below the floor and ErrOutOfRange past the current length.
func (s *Store) Read(off int64, dst []byte) error {
	if err := s.checkRange(off, int64(len(dst))); err != nil {
		return err
	}
	n := int64(len(dst))
	if off < s.fileEnd {
		fn := s.fileEnd - off
		if fn > n {
			fn = n
		}
		if _, err := s.file.ReadAt(dst[:fn], off-s.fileBase); err != nil {
			return fmt.Errorf("blockstore: spill read at %d: %w", off, err)
		}
		dst = dst[fn:]
		off += fn
		if len(dst) == 0 {
			return nil
		}
	}
	copy(dst, s.mem[off-s.fileEnd:])
	return nil
}

// Write overwrites existing bytes in place. In-place writes never grow the
// store; a range extending past the current length fails with ErrOutOfRange.
func (s *Store) Write(off int64, p []byte) error {
	if err := s.checkRange(off, int64(len(p))); err != nil {
		return err
	}
	if off < s.fileEnd {
		fn := s.fileEnd - off
		if fn > int64(len(p)) {
			fn = int64(len(p))
		}
		if _, err := s.file.WriteAt(p[:fn], off-s.fileBase); err != nil {
			return fmt.Errorf("blockstore: spill write at %d: %w", off, err)
		}
		p = p[fn:]
		off += fn
		if len(p) == 0 {
			return nil
		}
	}
	copy(s.mem[off-s.fileEnd:], p)
	return nil
}

// TruncateFront logically discards the first n bytes above the current
// floor. Offsets of the remaining bytes are unaffected. When the whole
// spilled region falls below the floor, the spill file is truncated and the
// dead resident head is released, so eviction reclaims both disk and memory.
func (s *Store) TruncateFront(n int64) {
	if n <= 0 {
		return
	}
	s.floor += n
	if max := s.Len(); s.floor > max {
		s.floor = max
	}
	if s.floor < s.fileEnd {
		return
	}
	if s.file != nil && s.fileEnd > s.fileBase {
		if err := s.file.Truncate(0); err == nil {
			s.fileBase = s.fileEnd
		}
	}
	if dead := s.floor - s.fileEnd; dead > 0 {
		s.mem = s.mem[:copy(s.mem, s.mem[dead:])]
		s.fileEnd = s.floor
		s.fileBase = s.floor
	}
}

// Close releases the spill file, if any. The store must not be used after.
func (s *Store) Close() error {
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	s.file = nil
	return err
}

func (s *Store) checkRange(off, n int64) error {
	if off < 0 || n < 0 || off+n > s.Len() {
		return ErrOutOfRange
	}
	if off < s.floor {
		return ErrEvicted
	}
	return nil
}

// spill moves the resident bytes to the tail of the spill file. Any I/O
// failure degrades the store to memory-only growth instead of surfacing an
// error on this append.
func (s *Store) spill() {
	if s.file == nil {
		f, err := os.CreateTemp(s.dir, "scrollkeep-"+s.id+"-*.spill")
		if err != nil {
			s.degrade(err)
			return
		}
		s.file = f
		s.log.WithField("path", f.Name()).Debug("spill file created")
	}
	if _, err := s.file.WriteAt(s.mem, s.fileEnd-s.fileBase); err != nil {
		s.degrade(err)
		return
	}
	s.fileEnd += int64(len(s.mem))
	s.mem = s.mem[:0]
}

func (s *Store) degrade(err error) {
	s.degraded = true
	s.log.WithField("err", err).Warn("spill failed; store degraded to memory-only growth")
	// The file is only released when it holds no live bytes; otherwise
	// already-spilled data must stay readable.
	if s.file != nil && s.fileEnd == s.fileBase {
		name := s.file.Name()
		s.file.Close()
		os.Remove(name)
		s.file = nil
	}
}
