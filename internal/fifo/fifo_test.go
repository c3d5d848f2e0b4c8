package fifo

import (
	"bytes"
	"testing"
)

func TestFifoWrite(t *testing.T) {
	fifo := NewFifo()
	res := fifo.Write([]byte{1, 2, 3, 4, 5})
	if res != 5 {
		t.Errorf("Written only %v", res)
	}
	if fifo.Len() != 5 {
		t.Errorf("Length is %v", fifo.Len())
	}
	res = fifo.Write(nil)
	if res != 0 {
		t.Error()
	}
	res = fifo.Write(make([]byte, 1000))
	if res != 1000 {
		t.Errorf("Wrote %v", res)
	}
	if fifo.Len() != 1005 {
		t.Errorf("Length is %v", fifo.Len())
	}
}

func TestFifoPeekDiscard(t *testing.T) {
	fifo := NewFifo()
	fifo.Write([]byte{1, 2, 3, 4, 5})
	chunk := fifo.Peek(3)
	if !bytes.Equal(chunk, []byte{1, 2, 3}) {
		t.Errorf("Peeked %v", chunk)
	}
	// Peeking must not consume
	chunk = fifo.Peek(3)
	if !bytes.Equal(chunk, []byte{1, 2, 3}) {
		t.Errorf("Peeked %v", chunk)
	}
	n := fifo.Discard(3)
	if n != 3 || fifo.Len() != 2 {
		t.Errorf("Discarded %v, remaining %v", n, fifo.Len())
	}
	chunk = fifo.Peek(10)
	if !bytes.Equal(chunk, []byte{4, 5}) {
		t.Errorf("Peeked %v", chunk)
	}
	n = fifo.Discard(10)
	if n != 2 || fifo.Len() != 0 {
		t.Errorf("Discarded %v, remaining %v", n, fifo.Len())
	}
	if len(fifo.Peek(10)) != 0 {
		t.Error()
	}
}

func TestFifoBytesReset(t *testing.T) {
	fifo := NewFifo()
	fifo.Write([]byte{1, 2, 3})
	fifo.Discard(1)
	out := fifo.Bytes()
	if !bytes.Equal(out, []byte{2, 3}) {
		t.Errorf("Got %v", out)
	}
	// Bytes must not consume
	if fifo.Len() != 2 {
		t.Error()
	}
	fifo.Reset()
	if fifo.Len() != 0 {
		t.Error()
	}
}
