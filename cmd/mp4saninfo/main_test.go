package main

import (
	"encoding/binary"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
	"github.com/mp4san/go-mp4san"
)

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func TestFtypInfo(t *testing.T) {
	c := qt.New(t)

	data := append([]byte("isom"), 0, 0, 0, 1)
	data = append(data, []byte("isomiso2mp41")...)

	info := ftypInfo(data)
	c.Assert(info["brand"], qt.Equals, "isom")
	c.Assert(info["version"], qt.Equals, uint32(1))
	c.Assert(info["compatible"], qt.DeepEquals, []string{"isom", "iso2", "mp41"})
}

func TestFtypInfoTooShort(t *testing.T) {
	c := qt.New(t)

	info := ftypInfo([]byte{1, 2, 3})
	c.Assert(info, qt.HasLen, 0)
}

func TestCollectBoxInfoMdat(t *testing.T) {
	c := qt.New(t)

	w := mp4san.NewWriter(32)
	w.StartBox(mp4san.TypeMdat)
	w.Write([]byte("hello"))
	w.EndBox()

	r := mp4san.NewReader(w.Bytes())
	c.Assert(r.Next(), qt.Equals, true)
	info := collectBoxInfo(&r)
	c.Assert(info["dataLength"], qt.Equals, 5)
}

func TestCollectBoxInfoStco(t *testing.T) {
	c := qt.New(t)

	w := mp4san.NewWriter(32)
	w.StartBox(mp4san.TypeStco)
	w.Write(be32(0))
	w.Write(be32(2))
	w.Write(be32(10))
	w.Write(be32(20))
	w.EndBox()

	r := mp4san.NewReader(w.Bytes())
	c.Assert(r.Next(), qt.Equals, true)
	info := collectBoxInfo(&r)
	c.Assert(info["entries"], qt.Equals, uint32(2))
}

func TestBuildTreeContainer(t *testing.T) {
	c := qt.New(t)

	inner := mp4san.NewWriter(32)
	inner.StartBox(mp4san.TypeMdat)
	inner.Write([]byte("abc"))
	inner.EndBox()

	outer := mp4san.NewWriter(64)
	outer.StartBox(mp4san.TypeTrak)
	outer.Write(inner.Bytes())
	outer.EndBox()

	want := []BoxNode{{
		Type: "trak",
		Size: uint64(outer.Len()),
		Info: map[string]any{},
		Children: []BoxNode{{
			Type: "mdat",
			Size: uint64(inner.Len()),
			Info: map[string]any{"dataLength": 3},
		}},
	}}

	r := mp4san.NewReader(outer.Bytes())
	got := buildTree(&r)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("buildTree mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSanitizeWritesOutput(t *testing.T) {
	c := qt.New(t)

	in, err := os.CreateTemp(c.TempDir(), "in-*.mp4")
	c.Assert(err, qt.IsNil)
	defer in.Close()

	w := mp4san.NewWriter(256)
	w.StartBox(mp4san.TypeFtyp)
	w.Write([]byte("isom"))
	w.Write(be32(0))
	w.Write([]byte("isom"))
	w.EndBox()
	ftyp := w.Bytes()

	stcoOffset := uint32(len(ftyp)) + 200

	moovW := mp4san.NewWriter(256)
	moovW.StartBox(mp4san.TypeMoov)
	moovW.StartBox(mp4san.TypeTrak)
	moovW.StartBox(mp4san.TypeMdia)
	moovW.StartBox(mp4san.TypeMinf)
	moovW.StartBox(mp4san.TypeStbl)
	moovW.StartBox(mp4san.TypeStco)
	moovW.Write(be32(0))
	moovW.Write(be32(1))
	moovW.Write(be32(stcoOffset))
	moovW.EndBox()
	moovW.EndBox()
	moovW.EndBox()
	moovW.EndBox()
	moovW.EndBox()
	moovW.EndBox()

	var buf []byte
	buf = append(buf, ftyp...)
	buf = append(buf, moovW.Bytes()...)

	mdatW := mp4san.NewWriter(32)
	mdatW.StartBox(mp4san.TypeMdat)
	mdatW.Write(make([]byte, 32))
	mdatW.EndBox()
	buf = append(buf, mdatW.Bytes()...)

	_, err = in.Write(buf)
	c.Assert(err, qt.IsNil)
	_, err = in.Seek(0, 0)
	c.Assert(err, qt.IsNil)

	outPath := in.Name() + ".out"
	defer os.Remove(outPath)

	err = runSanitize(in, outPath)
	c.Assert(err, qt.IsNil)

	outData, err := os.ReadFile(outPath)
	c.Assert(err, qt.IsNil)
	c.Assert(len(outData) > 0, qt.Equals, true)
}
