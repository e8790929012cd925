package mp4san

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDecodeHeaderSmall(t *testing.T) {
	c := qt.New(t)

	buf := make([]byte, headerSmallSize)
	be.PutUint32(buf[0:4], 16)
	copy(buf[4:8], "ftyp")

	h, err := decodeHeader(buf, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(h.Type, qt.Equals, TypeFtyp)
	c.Assert(h.Size, qt.Equals, uint64(16))
	c.Assert(h.EncodedLen(), qt.Equals, headerSmallSize)
	c.Assert(h.IsUntilEOF(), qt.Equals, false)
	c.Assert(h.BodySize(), qt.Equals, uint64(8))
}

func TestDecodeHeaderExtended(t *testing.T) {
	c := qt.New(t)

	buf := make([]byte, headerLargeSize)
	be.PutUint32(buf[0:4], 1)
	copy(buf[4:8], "mdat")
	be.PutUint64(buf[8:16], 1<<40)

	h, err := decodeHeader(buf, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(h.Type, qt.Equals, TypeMdat)
	c.Assert(h.Size, qt.Equals, uint64(1<<40))
	c.Assert(h.EncodedLen(), qt.Equals, headerLargeSize)
}

func TestDecodeHeaderUntilEOF(t *testing.T) {
	c := qt.New(t)

	buf := make([]byte, headerSmallSize)
	be.PutUint32(buf[0:4], 0)
	copy(buf[4:8], "mdat")

	h, err := decodeHeader(buf, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(h.IsUntilEOF(), qt.Equals, true)
	c.Assert(h.EncodedLen(), qt.Equals, headerSmallSize)
}

func TestDecodeHeaderTruncated(t *testing.T) {
	c := qt.New(t)

	_, err := decodeHeader([]byte{0, 0, 0}, 0)

	var sanErr *Error
	c.Assert(err, qt.ErrorAs, &sanErr)
	c.Assert(sanErr.Kind, qt.Equals, KindTruncatedBox)
}

func TestDecodeHeaderExtendedTooSmall(t *testing.T) {
	c := qt.New(t)

	buf := make([]byte, headerLargeSize)
	be.PutUint32(buf[0:4], 1)
	copy(buf[4:8], "mdat")
	be.PutUint64(buf[8:16], 4)

	_, err := decodeHeader(buf, 0)
	var sanErr *Error
	c.Assert(err, qt.ErrorAs, &sanErr)
	c.Assert(sanErr.Kind, qt.Equals, KindInvalidInput)
	c.Assert(sanErr.Box, qt.Equals, TypeMdat)
}

func TestDecodeHeaderSizeSmallerThanHeader(t *testing.T) {
	c := qt.New(t)

	buf := make([]byte, headerSmallSize)
	be.PutUint32(buf[0:4], 4)
	copy(buf[4:8], "free")

	_, err := decodeHeader(buf, 0)
	var sanErr *Error
	c.Assert(err, qt.ErrorAs, &sanErr)
	c.Assert(sanErr.Kind, qt.Equals, KindInvalidInput)
}

func TestExplicitLen(t *testing.T) {
	c := qt.New(t)

	c.Assert(explicitLen(8), qt.Equals, uint64(16))
	c.Assert(explicitLen(0), qt.Equals, uint64(8))

	big := explicitLen(0xFFFFFFFF)
	c.Assert(big, qt.Equals, uint64(headerLargeSize)+0xFFFFFFFF)
}

// Header emission for production code goes entirely through
// Writer.StartBox/EndBox (writer.go); there's no standalone encode function
// any more, so decoding the extended-size form (TestDecodeHeaderExtended,
// above) and explicitLen's size-threshold arithmetic, the same threshold
// Writer.EndBox applies (TestExplicitLen), are what cover this path.
