package mp4san

import (
	"bytes"
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
)

func validSanitizeInput(c *qt.C) []byte {
	var buf []byte
	buf = append(buf, buildBox(TypeFtyp, append([]byte("isom"), 0, 0, 0, 0, 'i', 's', 'o', 'm')...)...)

	moov := buildMoovWithStco([]uint32{uint32(len(buf)) + 200})
	buf = append(buf, buildBox(TypeMoov, moov)...)
	buf = append(buf, buildBox(TypeMdat, bytes.Repeat([]byte{0xAB}, 16))...)
	return buf
}

func TestSanitizeBatchRunsAllInputs(t *testing.T) {
	c := qt.New(t)

	inputs := make([]ByteSource, 4)
	for i := range inputs {
		inputs[i] = NewByteSource(bytes.NewReader(validSanitizeInput(c)))
	}

	results, errs := SanitizeBatch(context.Background(), inputs, 2)
	c.Assert(len(results), qt.Equals, len(inputs))
	for i := range inputs {
		c.Assert(errs[i], qt.IsNil)
		c.Assert(results[i], qt.Not(qt.IsNil))
	}
}

func TestSanitizeBatchIsolatesFailures(t *testing.T) {
	c := qt.New(t)

	inputs := []ByteSource{
		NewByteSource(bytes.NewReader(validSanitizeInput(c))),
		NewByteSource(bytes.NewReader([]byte{0, 0, 0})), // truncated, fails
	}

	results, errs := SanitizeBatch(context.Background(), inputs, 2)
	c.Assert(errs[0], qt.IsNil)
	c.Assert(results[0], qt.Not(qt.IsNil))
	c.Assert(errs[1], qt.Not(qt.IsNil))
	c.Assert(results[1], qt.IsNil)
}

func TestSanitizeBatchCanceledContext(t *testing.T) {
	c := qt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []ByteSource{NewByteSource(bytes.NewReader(validSanitizeInput(c)))}
	_, errs := SanitizeBatch(ctx, inputs, 1)
	c.Assert(errs[0], qt.Not(qt.IsNil))
}
