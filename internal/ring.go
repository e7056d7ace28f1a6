package internal

import (
	"errors"
	"io"
)

var (
	errRingBufferFull = errors.New("rdt/ring: buffer full")
	errRingNoData     = errors.New("rdt/ring: empty write")
)

// Ring is a byte ring buffer used to adapt a blocking byte source (such as
// os.Stdin) into the non-blocking conn_input/conn_output shape the transport
// core requires: a background reader fills it while the core drains it with
// Read, which never blocks on an empty buffer.
type Ring struct {
	Buf []byte
	Off int
	End int
}

// Write appends data to the ring buffer, starting at index End. Returns
// errRingBufferFull if there isn't enough free space for all of b.
func (r *Ring) Write(b []byte) (int, error) {
	if r.isFull() {
		return 0, errRingBufferFull
	} else if len(b) == 0 {
		return 0, errRingNoData
	}
	if len(b) > r.Free() {
		return 0, errRingBufferFull
	}
	mid := r.midFree()
	if mid > 0 {
		n := copy(r.Buf[r.End:r.Off], b)
		r.End += n
		return n, nil
	}
	if r.End == 0 {
		r.End = r.Off
	}
	n := copy(r.Buf[r.End:], b)
	r.End += n
	if n < len(b) {
		n2 := copy(r.Buf, b[n:])
		r.End = n2
		n += n2
	}
	return n, nil
}

// Read copies up to len(b) buffered bytes into b and advances the read
// pointer. Returns io.EOF if no data is currently buffered (callers treat
// this as "would block", not end-of-stream).
func (r *Ring) Read(b []byte) (int, error) {
	if r.Buffered() == 0 {
		return 0, io.EOF
	}
	var n int
	if r.End > r.Off {
		n = copy(b, r.Buf[r.Off:r.End])
	} else {
		n = copy(b, r.Buf[r.Off:])
		if n < len(b) {
			n += copy(b[n:], r.Buf[:r.End])
		}
	}
	r.onReadEnd(n)
	return n, nil
}

// Reset discards all buffered data.
func (r *Ring) Reset() { r.Off, r.End = 0, 0 }

// Size returns the capacity of the ring buffer.
func (r *Ring) Size() int { return len(r.Buf) }

// Buffered returns the number of bytes available to Read.
func (r *Ring) Buffered() int { return r.Size() - r.Free() }

// Free returns the number of bytes available to Write.
func (r *Ring) Free() int {
	if r.End == 0 || r.Off == 0 {
		return len(r.Buf) - r.End
	}
	if r.Off < r.End {
		return r.Off + (len(r.Buf) - r.End)
	}
	return r.Off - r.End
}

func (r *Ring) midFree() int {
	if r.End >= r.Off || r.End == 0 {
		return 0
	}
	return r.Off - r.End
}

func (r *Ring) isFull() bool {
	return r.End != 0 && (r.End == r.Off || (r.End == len(r.Buf) && r.Off == 0))
}

func (r *Ring) onReadEnd(n int) {
	if n <= 0 {
		panic("internal/ring: invalid read length")
	}
	newOff := r.addOff(r.Off, n)
	if newOff == r.End {
		r.Reset()
	} else if newOff == len(r.Buf) {
		r.Off = 0
	} else {
		r.Off = newOff
	}
}

func (r *Ring) addOff(a, b int) int {
	result := a + b
	if result > len(r.Buf) {
		result -= len(r.Buf)
	}
	return result
}
