package mp4san

// CompatibleBrand is the single brand this sanitizer requires ftyp to
// advertise among its compatible_brands list.
var CompatibleBrand = BoxType{'i', 's', 'o', 'm'}

// Ftyp holds the parsed fields of a file-type box.
type Ftyp struct {
	MajorBrand   BoxType
	MinorVersion uint32
	Compatible   []BoxType
}

// parseFtyp parses an ftyp box body (everything after the box header). The
// compatible_brands list has no count field of its own: its length is
// whatever remains after major_brand/minor_version, so it's an unbounded
// array in the §4.2 sense rather than a count-prefixed one.
func parseFtyp(data []byte) (Ftyp, error) {
	if len(data) < 8 {
		return Ftyp{}, errKind(KindTruncatedBox, "ftyp body too short").withBox(TypeFtyp)
	}
	f := Ftyp{MinorVersion: be.Uint32(data[4:8])}
	copy(f.MajorBrand[:], data[0:4])

	rest := data[8:]
	n, err := unboundedArrayCount(len(rest), 4)
	if err != nil {
		return Ftyp{}, err.withBox(TypeFtyp)
	}
	f.Compatible = make([]BoxType, n)
	for i := range f.Compatible {
		copy(f.Compatible[i][:], rest[i*4:i*4+4])
	}
	return f, nil
}

// hasCompatibleBrand reports whether f advertises CompatibleBrand.
func (f Ftyp) hasCompatibleBrand() bool {
	for _, b := range f.Compatible {
		if b == CompatibleBrand {
			return true
		}
	}
	return false
}

// encodedLen returns the on-wire size of the ftyp box (header + body) when
// re-emitted with an explicit (non-until-EOF) size.
func (f Ftyp) encodedLen() uint64 {
	return explicitLen(8 + 4*len(f.Compatible))
}

// putFtyp writes a complete, explicit-size ftyp box into w.
func putFtyp(w *Writer, f Ftyp) {
	w.StartBox(TypeFtyp)
	w.putBytes(f.MajorBrand[:])
	w.putUint32(f.MinorVersion)
	for _, c := range f.Compatible {
		w.putBytes(c[:])
	}
	w.EndBox()
}
