package mp4san

import (
	"errors"
	"io"
)

// ByteSource is a forward-only pull interface over an input stream: it can
// read into a caller buffer, skip forward by a byte count that may exceed
// the remaining stream length, and report its current position and total
// length when known.
//
// A skip beyond the end of the stream is allowed; subsequent reads then
// return io.EOF. Seeking backward is never required.
type ByteSource interface {
	io.Reader

	// Skip advances the stream by amount bytes without returning them.
	Skip(amount uint64) error

	// Position returns the current offset from the start of the stream.
	Position() (uint64, error)

	// Len returns the total length of the stream.
	Len() (uint64, error)
}

// seekSource adapts any io.ReadSeeker into a ByteSource by translating Skip
// into a relative seek, falling back to an absolute seek when amount would
// overflow the signed offset range accepted by io.SeekCurrent.
type seekSource struct {
	rs io.ReadSeeker
}

// NewByteSource adapts rs into a ByteSource.
func NewByteSource(rs io.ReadSeeker) ByteSource {
	return &seekSource{rs: rs}
}

func (s *seekSource) Read(p []byte) (int, error) {
	return s.rs.Read(p)
}

func (s *seekSource) Skip(amount uint64) error {
	if amount == 0 {
		return nil
	}
	if rel := int64(amount); rel >= 0 {
		_, err := s.rs.Seek(rel, io.SeekCurrent)
		return err
	}
	// amount doesn't fit in a signed relative offset: resolve the absolute
	// target position instead, checking for overflow past the u64 address
	// space along the way.
	pos, err := s.Position()
	if err != nil {
		return err
	}
	target := pos + amount
	if target < pos {
		return errors.New("seek past end of address space")
	}
	_, err = s.rs.Seek(int64(target), io.SeekStart)
	return err
}

func (s *seekSource) Position() (uint64, error) {
	pos, err := s.rs.Seek(0, io.SeekCurrent)
	return uint64(pos), err
}

func (s *seekSource) Len() (uint64, error) {
	pos, err := s.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if pos != end {
		if _, err := s.rs.Seek(pos, io.SeekStart); err != nil {
			return 0, err
		}
	}
	return uint64(end), nil
}

// bufSource wraps a ByteSource with a forward-only read buffer of at least
// headerLargeSize bytes, so the header codec never issues a sub-byte read
// and Skip can consume buffered bytes before reaching into the underlying
// source. The logical stream position it reports is always
// underlying_position - bytes_still_buffered.
type bufSource struct {
	src  ByteSource
	buf  []byte
	pos  int // read cursor into buf
	end  int // valid bytes in buf
}

// minBufSize is the smallest buffer newBufSource will allocate: the header
// codec always peeks up to headerLargeSize bytes at once, so the buffer must
// hold at least that much even before it grows on demand in peek.
const minBufSize = headerLargeSize

// defaultBufSize is the initial buffer capacity, well above minBufSize to
// avoid the grow-on-first-peek path for ordinary inputs.
const defaultBufSize = 4096

func newBufSource(src ByteSource) *bufSource {
	size := defaultBufSize
	if size < minBufSize {
		size = minBufSize
	}
	return &bufSource{src: src, buf: make([]byte, size)}
}

func (b *bufSource) fill() error {
	if b.pos < b.end {
		copy(b.buf, b.buf[b.pos:b.end])
		b.end -= b.pos
		b.pos = 0
	} else {
		b.pos, b.end = 0, 0
	}
	n, err := b.src.Read(b.buf[b.end:])
	b.end += n
	if n > 0 {
		return nil
	}
	return err
}

func (b *bufSource) buffered() int { return b.end - b.pos }

// peek ensures at least n bytes (or fewer, at EOF) are available starting at
// the read cursor and returns a slice over them without consuming.
func (b *bufSource) peek(n int) ([]byte, error) {
	for b.buffered() < n {
		if b.end == len(b.buf) && b.pos == 0 {
			grown := make([]byte, len(b.buf)*2)
			copy(grown, b.buf[:b.end])
			b.buf = grown
		}
		if err := b.fill(); err != nil {
			if b.buffered() > 0 {
				break
			}
			return nil, err
		}
	}
	if b.buffered() < n {
		n = b.buffered()
	}
	return b.buf[b.pos : b.pos+n], nil
}

func (b *bufSource) consume(n int) {
	b.pos += n
}

func (b *bufSource) Read(p []byte) (int, error) {
	if b.buffered() == 0 {
		if len(p) >= len(b.buf) {
			return b.src.Read(p)
		}
		if err := b.fill(); err != nil && b.buffered() == 0 {
			return 0, err
		}
	}
	n := copy(p, b.buf[b.pos:b.end])
	b.pos += n
	return n, nil
}

func (b *bufSource) Skip(amount uint64) error {
	fromBuf := uint64(b.buffered())
	if fromBuf > amount {
		fromBuf = amount
	}
	b.consume(int(fromBuf))
	remaining := amount - fromBuf
	if remaining == 0 {
		return nil
	}
	return b.src.Skip(remaining)
}

// Position returns the logical stream position: the underlying source's
// position minus however many bytes are still sitting in the buffer.
func (b *bufSource) Position() (uint64, error) {
	pos, err := b.src.Position()
	if err != nil {
		return 0, err
	}
	return pos - uint64(b.buffered()), nil
}

func (b *bufSource) Len() (uint64, error) {
	return b.src.Len()
}
