package mp4san

// InputSpan names a byte range in the original input: the media payload
// that sanitized metadata is meant to be concatenated with, rather than
// copied. offset+len is guaranteed not to overflow u64.
type InputSpan struct {
	Offset uint64
	Len    uint64
}

func (s InputSpan) end() uint64 { return s.Offset + s.Len }

// newInputSpan builds a span, checking that offset+len doesn't overflow u64.
func newInputSpan(offset, len uint64) (InputSpan, bool) {
	end := offset + len
	return InputSpan{Offset: offset, Len: len}, end >= offset
}

// extend grows s by delta bytes, checking both that Len doesn't overflow and
// that the resulting Offset+Len still fits in u64.
func (s *InputSpan) extend(delta uint64) bool {
	newLen := s.Len + delta
	if newLen < s.Len {
		return false
	}
	end := s.Offset + newLen
	if end < s.Offset {
		return false
	}
	s.Len = newLen
	return true
}

// SanitizedMetadata is the result of a successful sanitization: a
// normalized metadata prefix and a descriptor of the payload byte range in
// the original input. Concatenating Metadata with the input bytes named by
// Data reconstructs a valid MP4 file.
type SanitizedMetadata struct {
	Metadata []byte
	Data     InputSpan
}
