package mp4san

import "encoding/binary"

var be = binary.BigEndian

// boundedArrayLen checks an entry-count-prefixed array (4-byte count followed
// by count entries of the given stride) against the remaining buffer length,
// returning an error if the multiplication would overflow or the entries
// don't fit. Mirrors the checked-multiply-then-bounds-check semantics of a
// bounded array parse: the count and stride are both attacker-controlled, so
// count*stride must be computed in a width that can't silently wrap.
func boundedArrayLen(count uint32, stride int, remaining int) (int, *Error) {
	total := uint64(count) * uint64(stride)
	if total > uint64(remaining) {
		return 0, errKind(KindInvalidInput, "array entries exceed box data")
	}
	return int(total), nil
}

// unboundedArrayCount returns the number of stride-sized entries that evenly
// divide the given buffer length, or an error if they don't divide evenly.
func unboundedArrayCount(length int, stride int) (int, *Error) {
	if stride <= 0 || length%stride != 0 {
		return 0, errKind(KindInvalidInput, "array length is not a multiple of entry size")
	}
	return length / stride, nil
}
