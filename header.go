package mp4san

import "math"

// headerSmallSize and headerLargeSize are the two box header encodings this
// codec ever produces or consumes: a 4-byte size plus 4-byte type, or the
// same followed by an 8-byte extended size.
const (
	headerSmallSize = 8
	headerLargeSize = 16
)

// sizeUntilEOF marks a BoxSize that consumes the remainder of the stream.
const sizeUntilEOF = ^uint64(0)

// BoxHeader is a decoded box size and type. Size holds the box's total size
// (header + body) in bytes, or sizeUntilEOF if the box was encoded with the
// until-EOF size variant.
type BoxHeader struct {
	Type BoxType
	Size uint64

	// hdrLen is the number of bytes this header actually occupied on the
	// wire, set by decodeHeader. It can't be derived from Size alone: the
	// until-EOF variant (size field 0) is always 8 bytes on the wire even
	// though Size itself is the sentinel sizeUntilEOF, which would otherwise
	// look like it needs the 64-bit extended encoding.
	hdrLen int
}

// EncodedLen returns the number of bytes this header occupies on the wire: 8
// for a small size, 16 when the size requires the 64-bit extended encoding.
func (h BoxHeader) EncodedLen() int {
	return h.hdrLen
}

// IsUntilEOF reports whether the header used the until-EOF size encoding.
func (h BoxHeader) IsUntilEOF() bool {
	return h.Size == sizeUntilEOF
}

// BodySize returns the header's body size (total size minus header size).
// Must not be called on an until-EOF header; callers resolve that case
// against the stream length instead (see scanner.go).
func (h BoxHeader) BodySize() uint64 {
	return h.Size - uint64(h.EncodedLen())
}

// decodeHeader reads a box header from buf[0:8] or buf[0:16]. The number of
// bytes the header occupied is available from the result's EncodedLen. buf
// must hold at least 8 bytes;
// if the size field requires the extended 64-bit encoding, buf must hold 16.
func decodeHeader(buf []byte, boxOffset uint64) (BoxHeader, error) {
	if len(buf) < headerSmallSize {
		return BoxHeader{}, errKind(KindTruncatedBox, "while parsing box header")
	}
	size0 := be.Uint32(buf[0:4])
	var t BoxType
	copy(t[:], buf[4:8])

	switch {
	case size0 == 0:
		return BoxHeader{Type: t, Size: sizeUntilEOF, hdrLen: headerSmallSize}, nil

	case size0 == 1:
		if len(buf) < headerLargeSize {
			return BoxHeader{}, errKind(KindTruncatedBox, "while parsing extended box header").withBox(t)
		}
		ext := be.Uint64(buf[8:16])
		if ext < headerLargeSize {
			return BoxHeader{}, errKindf(KindInvalidInput, "extended box size %d smaller than header", ext).withBox(t)
		}
		return BoxHeader{Type: t, Size: ext, hdrLen: headerLargeSize}, nil

	case size0 < headerSmallSize:
		return BoxHeader{}, errKindf(KindInvalidInput, "box size %d at offset %d smaller than header", size0, boxOffset).withBox(t)

	default:
		return BoxHeader{Type: t, Size: uint64(size0), hdrLen: headerSmallSize}, nil
	}
}

// explicitLen returns the total size (header + body) of a box with an
// explicit, non-until-EOF size encoding, using whichever of the two header
// widths is smallest for the given body length.
func explicitLen(bodyLen int) uint64 {
	total := uint64(headerSmallSize) + uint64(bodyLen)
	if total > math.MaxUint32 {
		total = uint64(headerLargeSize) + uint64(bodyLen)
	}
	return total
}

