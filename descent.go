package mp4san

// Structural descent into a parsed moov body to reach
// chunk-offset tables without deserializing anything else. Grounded on the
// trak/mdia/minf/stbl walk in track/track.go, trimmed to the single path this
// sanitizer needs: moov -> trak -> mdia -> minf -> stbl -> (stco | co64).

// chunkOffsetTable is a mutable view over one track's chunk-offset entries,
// backed directly by the bytes of the moov buffer.
type chunkOffsetTable struct {
	data  []byte // stco/co64 body, after the version+flags header
	is64  bool
	count uint32
}

const (
	stcoEntrySize   = 4
	co64EntrySize   = 8
	arrayHeaderSize = 4 // entry count
)

func newChunkOffsetTable(box BoxType, data []byte) (chunkOffsetTable, error) {
	if len(data) < arrayHeaderSize {
		return chunkOffsetTable{}, errKind(KindTruncatedBox, "while parsing chunk offset table").withBox(box)
	}
	count := be.Uint32(data[0:4])
	stride := stcoEntrySize
	if box == TypeCo64 {
		stride = co64EntrySize
	}
	n, err := boundedArrayLen(count, stride, len(data)-arrayHeaderSize)
	if err != nil {
		return chunkOffsetTable{}, err.withBox(box)
	}
	return chunkOffsetTable{
		data:  data[arrayHeaderSize : arrayHeaderSize+n],
		is64:  box == TypeCo64,
		count: count,
	}, nil
}

// Len returns the number of chunk-offset entries.
func (t chunkOffsetTable) Len() int { return int(t.count) }

// At returns the entry at index i.
func (t chunkOffsetTable) At(i int) uint64 {
	if t.is64 {
		return be.Uint64(t.data[i*co64EntrySize:])
	}
	return uint64(be.Uint32(t.data[i*stcoEntrySize:]))
}

// Displace adds displacement to every entry, checking for overflow and (for
// 32-bit tables) for a negative result. It writes through to the backing
// moov bytes in place.
func (t chunkOffsetTable) Displace(displacement int32) error {
	for i := range int(t.count) {
		cur := t.At(i)
		next, ok := addDisplacement(cur, displacement)
		if !ok || (!t.is64 && next > 0xFFFFFFFF) {
			return errKindf(KindInvalidInput, "chunk offset %d not within mdat after displacement", cur).withBox(TypeStco)
		}
		if t.is64 {
			be.PutUint64(t.data[i*co64EntrySize:], next)
		} else {
			be.PutUint32(t.data[i*stcoEntrySize:], uint32(next))
		}
	}
	return nil
}

func addDisplacement(v uint64, d int32) (uint64, bool) {
	if d >= 0 {
		r := v + uint64(d)
		return r, r >= v
	}
	neg := uint64(-int64(d))
	if neg > v {
		return 0, false
	}
	return v - neg, true
}

// forEachChunkOffsetTable walks moovBody (moov's children, i.e. the box's
// body with its own header already stripped) and invokes fn once for every
// track's chunk-offset table (exactly one of stco/co64 per stbl). moovBody
// is mutated in place by fn via the table's Displace method.
func forEachChunkOffsetTable(moovBody []byte, fn func(chunkOffsetTable) error) error {
	r := NewReader(moovBody)
	for r.Next() {
		if r.Type() != TypeTrak {
			continue
		}
		if err := descendTrak(&r, fn); err != nil {
			return err
		}
	}
	return nil
}

func descendTrak(r *Reader, fn func(chunkOffsetTable) error) error {
	r.Enter()
	defer r.Exit()
	for r.Next() {
		if r.Type() == TypeMdia {
			if err := descendMdia(r, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func descendMdia(r *Reader, fn func(chunkOffsetTable) error) error {
	r.Enter()
	defer r.Exit()
	for r.Next() {
		if r.Type() == TypeMinf {
			if err := descendMinf(r, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func descendMinf(r *Reader, fn func(chunkOffsetTable) error) error {
	r.Enter()
	defer r.Exit()
	for r.Next() {
		if r.Type() == TypeStbl {
			if err := descendStbl(r, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func descendStbl(r *Reader, fn func(chunkOffsetTable) error) error {
	r.Enter()
	defer r.Exit()

	found := false
	for r.Next() {
		switch r.Type() {
		case TypeStco, TypeCo64:
			if found {
				return errKind(KindInvalidBoxLayout, "stbl has more than one chunk offset table").withBox(r.Type())
			}
			found = true
			table, err := newChunkOffsetTable(r.Type(), r.Data())
			if err != nil {
				return wrapAttach(err, "while parsing "+r.Type().String())
			}
			if err := fn(table); err != nil {
				return err
			}
		}
	}
	if !found {
		return errKind(KindMissingRequiredBox, "stbl missing stco/co64").withBox(TypeStbl)
	}
	return nil
}
