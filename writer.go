package mp4san

// maxDepth bounds box nesting the writer can track open frames for. The
// sanitizer itself only opens one top-level box at a time (ftyp, moov, free),
// and the deepest nesting the tests build is moov/trak/mdia/minf/stbl/stco,
// so this is generous headroom.
const maxDepth = 16

// writerFrame tracks the start offset of a box for size backpatching.
type writerFrame struct {
	offset int
}

// Writer encodes ISOBMFF boxes into a byte buffer, backpatching each box's
// size field once its content is known.
type Writer struct {
	buf   []byte
	pos   int
	stack [maxDepth]writerFrame
	depth int
}

// NewWriter creates a Writer that appends into a buffer with the given
// initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written data.
func (w *Writer) Bytes() []byte { return w.buf[:w.pos] }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.pos }

func (w *Writer) grow(n int) {
	for cap(w.buf) < w.pos+n {
		w.buf = append(w.buf[:cap(w.buf)], 0)
	}
	w.buf = w.buf[:w.pos+n]
}

// Write appends raw bytes. Implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.putBytes(p)
	return len(p), nil
}

func (w *Writer) putUint8(v byte) {
	w.grow(1)
	w.buf[w.pos] = v
	w.pos++
}

func (w *Writer) putUint16(v uint16) {
	w.grow(2)
	be.PutUint16(w.buf[w.pos:], v)
	w.pos += 2
}

func (w *Writer) putUint32(v uint32) {
	w.grow(4)
	be.PutUint32(w.buf[w.pos:], v)
	w.pos += 4
}

func (w *Writer) putUint64(v uint64) {
	w.grow(8)
	be.PutUint64(w.buf[w.pos:], v)
	w.pos += 8
}

func (w *Writer) putZeros(n int) {
	w.grow(n)
	clear(w.buf[w.pos : w.pos+n])
	w.pos += n
}

func (w *Writer) putBytes(p []byte) {
	w.grow(len(p))
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
}

// StartBox begins a new box with a placeholder size. Write content, then
// call EndBox.
func (w *Writer) StartBox(t BoxType) {
	w.stack[w.depth] = writerFrame{offset: w.pos}
	w.depth++
	w.putUint32(0) // placeholder size
	w.putBytes(t[:])
}

// EndBox finishes the current box by backpatching its size. If the box grew
// past the 32-bit size field, it is rewritten to the extended 64-bit form by
// shifting its content forward 8 bytes.
func (w *Writer) EndBox() {
	w.depth--
	f := w.stack[w.depth]
	size := uint64(w.pos - f.offset)
	if size <= 0xFFFFFFFF {
		be.PutUint32(w.buf[f.offset:], uint32(size))
		return
	}
	w.grow(8)
	copy(w.buf[f.offset+headerLargeSize:], w.buf[f.offset+headerSmallSize:w.pos])
	be.PutUint32(w.buf[f.offset:], 1)
	be.PutUint64(w.buf[f.offset+8:], size+8)
	w.pos += 8
}
