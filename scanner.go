package mp4san

import (
	"errors"
	"io"
)

// Scanner walks the top-level boxes of a ByteSource one at a time: for each
// box it decodes the header, resolves an until-EOF size against the
// source's total length, and lets the caller either materialize the body
// with ReadBody or leave it to be skipped automatically before the next
// box. Grounded on the Scanner/Entry/ReadBody/Err surface used throughout
// cmd/mp4dump/main.go and benchmark_test.go.
type Scanner struct {
	src *bufSource

	entry     Entry
	remaining uint64 // unread body bytes of entry

	err  error
	done bool
}

// Entry describes one top-level box as seen by the scanner: Offset is the
// logical stream position where its header begins, and Size is the box's
// resolved total size (header plus body; an until-EOF box already has its
// size resolved against the source length here).
type Entry struct {
	Type      BoxType
	Offset    uint64
	HeaderLen int
	Size      uint64
}

// DataSize returns the entry's body length.
func (e Entry) DataSize() uint64 { return e.Size - uint64(e.HeaderLen) }

// NewScanner creates a Scanner over src.
func NewScanner(src ByteSource) *Scanner {
	return &Scanner{src: newBufSource(src)}
}

// Next advances to the next top-level box, skipping any unread bytes left
// over from the previous one. Returns false at EOF or on error; call Err to
// distinguish the two.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if s.remaining > 0 {
		if err := s.src.Skip(s.remaining); err != nil {
			s.fail(errIO(err))
			return false
		}
		s.remaining = 0
	}

	offset, err := s.src.Position()
	if err != nil {
		s.fail(errIO(err))
		return false
	}

	peeked, err := s.src.peek(headerLargeSize)
	if err != nil && len(peeked) == 0 {
		if errors.Is(err, io.EOF) {
			s.done = true
			return false
		}
		s.fail(errIO(err))
		return false
	}
	if len(peeked) == 0 {
		s.done = true
		return false
	}

	h, perr := decodeHeader(peeked, offset)
	if perr != nil {
		s.fail(wrapAttach(perr, "while parsing box header"))
		return false
	}
	headerLen := h.EncodedLen()
	s.src.consume(headerLen)

	var bodyLen uint64
	if h.IsUntilEOF() {
		total, err := s.src.Len()
		if err != nil {
			s.fail(errIO(err))
			return false
		}
		if total < offset+uint64(headerLen) {
			s.fail(errKind(KindTruncatedBox, "until-EOF box header exceeds stream length").withBox(h.Type))
			return false
		}
		bodyLen = total - offset - uint64(headerLen)
	} else {
		bodyLen = h.BodySize()
	}

	s.entry = Entry{Type: h.Type, Offset: offset, HeaderLen: headerLen, Size: uint64(headerLen) + bodyLen}
	s.remaining = bodyLen
	return true
}

// Entry returns the entry produced by the most recent Next call.
func (s *Scanner) Entry() Entry { return s.entry }

// ReadBody reads the current entry's body into buf, which must have length
// equal to the entry's DataSize (or less, to read a prefix). Subsequent
// calls continue from where the previous one left off within the entry.
func (s *Scanner) ReadBody(buf []byte) error {
	if uint64(len(buf)) > s.remaining {
		return errKind(KindTruncatedBox, "read past end of box body").withBox(s.entry.Type)
	}
	read := 0
	for read < len(buf) {
		n, err := s.src.Read(buf[read:])
		read += n
		if err != nil {
			s.remaining -= uint64(read)
			return errIO(err)
		}
	}
	s.remaining -= uint64(read)
	return nil
}

// Err returns the error that stopped iteration, if any.
func (s *Scanner) Err() error { return s.err }

func (s *Scanner) fail(err error) {
	s.err = err
	s.done = true
}
