package mp4san

import "math"

// padHeaderSize is the minimal encoded size of a free box (an 8-byte small
// header with no body): the smallest amount of slack worth padding rather
// than displacing chunk offsets for.
const padHeaderSize = headerSmallSize

// maxPadSize bounds how large a padding free box's 32-bit size field can
// grow before it must be encoded as displacement instead.
const maxPadSize = math.MaxUint32 - padHeaderSize

// layoutPlan is the result of comparing the payload's original offset
// against the final metadata length: either pad, displace, or do nothing.
type layoutPlan struct {
	padSize      uint64
	displacement int32
}

// planLayout decides how to reconcile metadataLen (the combined size of the
// re-encoded ftyp and moov) with payloadOffset (where the payload currently
// starts in the input), per the pad-vs-displace decision table: pad when
// the payload sits far enough ahead that a free box absorbs the gap,
// displace chunk offsets otherwise.
func planLayout(metadataLen, payloadOffset uint64) (layoutPlan, *Error) {
	switch {
	case payloadOffset == metadataLen:
		return layoutPlan{}, nil

	case payloadOffset > metadataLen:
		gap := payloadOffset - metadataLen
		if gap >= padHeaderSize && gap <= maxPadSize {
			return layoutPlan{padSize: gap}, nil
		}
		d, ok := fitInt32(gap)
		if !ok {
			return layoutPlan{}, errKind(KindUnsupportedBoxLayout, "mdat displaced too far").withBox(TypeMdat)
		}
		return layoutPlan{displacement: -d}, nil

	default:
		gap := metadataLen - payloadOffset
		d, ok := fitInt32(gap)
		if !ok {
			return layoutPlan{}, errKind(KindUnsupportedBoxLayout, "mdat displaced too far").withBox(TypeMdat)
		}
		return layoutPlan{displacement: d}, nil
	}
}

func fitInt32(v uint64) (int32, bool) {
	if v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

// rewriteChunkOffsets applies plan's displacement, if any, to every track's
// chunk-offset table in moovBody (moov's body, header already stripped),
// mutating it in place.
func rewriteChunkOffsets(moovBody []byte, plan layoutPlan) error {
	if plan.displacement == 0 {
		return nil
	}
	return forEachChunkOffsetTable(moovBody, func(t chunkOffsetTable) error {
		return t.Displace(plan.displacement)
	})
}

// emitMetadata assembles the final metadata prefix: ftyp, moov (with its
// body already rewritten in place for any displacement), and an optional
// padding free box.
func emitMetadata(ftyp Ftyp, moovBody []byte, plan layoutPlan) []byte {
	capacity := int(ftyp.encodedLen()) + int(explicitLen(len(moovBody))) + int(plan.padSize)
	w := NewWriter(capacity)

	putFtyp(w, ftyp)

	w.StartBox(TypeMoov)
	w.putBytes(moovBody)
	w.EndBox()

	if plan.padSize > 0 {
		w.StartBox(TypeFree)
		w.putZeros(int(plan.padSize - padHeaderSize))
		w.EndBox()
	}

	return w.Bytes()
}
