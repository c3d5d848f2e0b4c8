package fifo

// Byte queue used as the transfer buffer of a session.
// When sending, the whole payload is written once and chunks are peeked
// from the front, then discarded when their acknowledge arrives.
// When receiving, incoming blocks are appended until end of transfer.
type Fifo struct {
	buffer  []byte
	readPos int
}

func NewFifo() *Fifo {
	return &Fifo{buffer: make([]byte, 0)}
}

func (f *Fifo) Reset() {
	f.buffer = f.buffer[:0]
	f.readPos = 0
}

// Number of bytes not yet consumed
func (f *Fifo) Len() int {
	return len(f.buffer) - f.readPos
}

// Append data at the back of the queue
func (f *Fifo) Write(buffer []byte) int {
	if buffer == nil {
		return 0
	}
	f.buffer = append(f.buffer, buffer...)
	return len(buffer)
}

// View of up to n front bytes, without consuming them.
// The returned slice aliases the internal buffer and is only valid
// until the next call on the fifo.
func (f *Fifo) Peek(n int) []byte {
	if n > f.Len() {
		n = f.Len()
	}
	return f.buffer[f.readPos : f.readPos+n]
}

// Drop up to n front bytes, return the number actually dropped
func (f *Fifo) Discard(n int) int {
	if n > f.Len() {
		n = f.Len()
	}
	f.readPos += n
	return n
}

// Remaining bytes as a copy, queue left untouched
func (f *Fifo) Bytes() []byte {
	out := make([]byte, f.Len())
	copy(out, f.buffer[f.readPos:])
	return out
}
