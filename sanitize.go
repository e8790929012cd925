package mp4san

import "context"

// MaxReadBoxSize bounds how large a single ftyp or moov body this sanitizer
// will materialize into memory. Larger boxes fail with KindInvalidInput
// rather than exhausting memory on an untrusted input.
const MaxReadBoxSize = 200 * 1024 * 1024

// Sanitize reads input's top-level boxes and returns a normalized metadata
// prefix plus a descriptor of the media payload span, blocking on input as
// needed. See SanitizeContext for a cancelable variant.
func Sanitize(input ByteSource) (*SanitizedMetadata, error) {
	return sanitize(context.Background(), input)
}

// SanitizeContext is Sanitize with cancellation: ctx is checked at each
// input-boundary call (reading a header, materializing a box body,
// skipping past one), so a canceled context stops the scan promptly
// instead of running to completion.
func SanitizeContext(ctx context.Context, input ByteSource) (*SanitizedMetadata, error) {
	return sanitize(ctx, input)
}

func sanitize(ctx context.Context, input ByteSource) (*SanitizedMetadata, error) {
	sc := NewScanner(input)

	var (
		ftyp     *Ftyp
		moovBody []byte
		haveMoov bool
		payload  *InputSpan
	)

	for sc.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := sc.Entry()

		if ftyp == nil && e.Type != TypeFtyp && e.Type != TypeFree {
			return nil, errKind(KindInvalidBoxLayout, "ftyp is not the first significant box").withBox(e.Type)
		}

		switch e.Type {
		case TypeFtyp:
			if ftyp != nil {
				return nil, errKind(KindInvalidBoxLayout, "multiple ftyp boxes").withBox(TypeFtyp)
			}
			buf, err := readBoundedBody(sc, e)
			if err != nil {
				return nil, err
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			f, perr := parseFtyp(buf)
			if perr != nil {
				return nil, wrapAttach(perr, "while parsing ftyp")
			}
			ftyp = &f

		case TypeMdat:
			if err := extendPayload(&payload, e); err != nil {
				return nil, err
			}

		case TypeFree:
			// Free boxes only ever extend an already-started payload span;
			// one seen before any mdat is ordinary unused metadata space
			// and is simply skipped by the scanner.
			if payload != nil && payload.end() == e.Offset {
				if !payload.extend(e.Size) {
					return nil, errKind(KindInvalidInput, "payload span length overflows").withBox(TypeFree)
				}
			}

		case TypeMoov:
			buf, err := readBoundedBody(sc, e)
			if err != nil {
				return nil, err
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			moovBody = buf
			haveMoov = true

		default:
			return nil, errKindf(KindUnsupportedBox, "unsupported top-level box").withBox(e.Type)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if ftyp == nil {
		return nil, errKind(KindMissingRequiredBox, "").withBox(TypeFtyp)
	}
	if !ftyp.hasCompatibleBrand() {
		return nil, errKindf(KindUnsupportedFormat, "major brand %s", ftyp.MajorBrand).withBox(ftyp.MajorBrand)
	}
	if !haveMoov {
		return nil, errKind(KindMissingRequiredBox, "").withBox(TypeMoov)
	}
	if !hasTrak(moovBody) {
		return nil, errKind(KindInvalidInput, "moov has no trak").withBox(TypeMoov)
	}
	if payload == nil {
		return nil, errKind(KindMissingRequiredBox, "").withBox(TypeMdat)
	}

	metadataLen := ftyp.encodedLen() + explicitLen(len(moovBody))
	plan, perr := planLayout(metadataLen, payload.Offset)
	if perr != nil {
		return nil, perr
	}
	if err := rewriteChunkOffsets(moovBody, plan); err != nil {
		return nil, err
	}

	return &SanitizedMetadata{
		Metadata: emitMetadata(*ftyp, moovBody, plan),
		Data:     *payload,
	}, nil
}

// readBoundedBody materializes e's body, rejecting bodies larger than
// MaxReadBoxSize so a hostile ftyp/moov size can't be used to exhaust
// memory.
func readBoundedBody(sc *Scanner, e Entry) ([]byte, error) {
	if e.DataSize() > MaxReadBoxSize {
		return nil, errKindf(KindInvalidInput, "box data too large: %d > %d", e.DataSize(), uint64(MaxReadBoxSize)).withBox(e.Type)
	}
	buf := make([]byte, e.DataSize())
	if err := sc.ReadBody(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// extendPayload folds a newly-scanned mdat entry into the accumulating
// payload span, requiring contiguity with whatever has already been
// accumulated.
func extendPayload(payload **InputSpan, e Entry) error {
	if *payload == nil {
		span, ok := newInputSpan(e.Offset, e.Size)
		if !ok {
			return errKind(KindInvalidInput, "payload span length overflows").withBox(TypeMdat)
		}
		*payload = &span
		return nil
	}
	p := *payload
	if p.end() != e.Offset {
		return errKind(KindUnsupportedBoxLayout, "discontiguous mdat boxes").withBox(TypeMdat)
	}
	if !p.extend(e.Size) {
		return errKind(KindInvalidInput, "payload span length overflows").withBox(TypeMdat)
	}
	return nil
}

// hasTrak reports whether moovBody (moov's body, header stripped) contains
// at least one trak child.
func hasTrak(moovBody []byte) bool {
	r := NewReader(moovBody)
	for r.Next() {
		if r.Type() == TypeTrak {
			return true
		}
	}
	return false
}
