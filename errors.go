package mp4san

import (
	"errors"
	"fmt"
)

// Kind classifies a sanitization failure. Kinds are semantic, not tied to any
// particular box or arithmetic operation that produced them.
type Kind int

const (
	// KindIO means the underlying ByteSource signaled a read/seek failure.
	KindIO Kind = iota
	// KindTruncatedBox means EOF was hit mid-header or mid-body.
	KindTruncatedBox
	// KindInvalidInput means a malformed length, an arithmetic overflow on an
	// encoded size, or an array entry fell out of bounds.
	KindInvalidInput
	// KindInvalidBoxLayout means an ordering or structure violation: ftyp
	// not first, duplicate ftyp, or more than one chunk-offset table in an
	// stbl.
	KindInvalidBoxLayout
	// KindUnsupportedBoxLayout means the input is structurally valid but
	// outside what this sanitizer supports (e.g. displacement too large, or
	// a discontiguous mdat run).
	KindUnsupportedBoxLayout
	// KindUnsupportedBox means an unexpected top-level box type was seen.
	KindUnsupportedBox
	// KindUnsupportedFormat means ftyp lacks the required compatible brand.
	KindUnsupportedFormat
	// KindMissingRequiredBox means ftyp, moov, or mdat was absent at EOF, or
	// an stbl has neither stco nor co64.
	KindMissingRequiredBox
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindTruncatedBox:
		return "truncated box"
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidBoxLayout:
		return "invalid box layout"
	case KindUnsupportedBoxLayout:
		return "unsupported box layout"
	case KindUnsupportedBox:
		return "unsupported box"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindMissingRequiredBox:
		return "missing required box"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every exported operation in this
// package. Box is the zero BoxType when no single box is responsible for the
// failure (e.g. a top-level io error).
type Error struct {
	Kind Kind
	Box  BoxType
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Box != (BoxType{}) {
		if e.Msg != "" {
			return fmt.Sprintf("%s (%s): %s", e.Kind, e.Box, e.Msg)
		}
		return fmt.Sprintf("%s (%s)", e.Kind, e.Box)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target has the same Kind, so callers can write
// errors.Is(err, mp4san.ErrKind(KindTruncatedBox)).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// ErrKind returns a sentinel *Error carrying only a kind, suitable for use
// with errors.Is to test the kind of an error returned from this package.
func ErrKind(k Kind) error {
	return &Error{Kind: k}
}

func errKind(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

func errKindf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) withBox(t BoxType) *Error {
	e.Box = t
	return e
}

// wrapAttach wraps err with a contextual attachment, the way this module's
// callers build diagnostic chains (cf. "while parsing box header" in the
// scanner, "while parsing stco" in the movie-box descent code).
func wrapAttach(err error, attachment string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		wrapped := *e
		wrapped.Err = err
		if wrapped.Msg == "" {
			wrapped.Msg = attachment
		} else {
			wrapped.Msg = attachment + ": " + wrapped.Msg
		}
		return &wrapped
	}
	return fmt.Errorf("%s: %w", attachment, err)
}

// errIO wraps an underlying I/O failure from the ByteSource.
func errIO(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIO, Err: err, Msg: err.Error()}
}
