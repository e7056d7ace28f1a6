package rdtnet

import (
	"io"
	"sync"

	"github.com/rdtlab/rdt/internal"
)

const stdStreamRingSize = 64 * 1024

// StdStreams adapts a pair of blocking io.Reader/io.Writer (typically
// os.Stdin and os.Stdout) into the non-blocking ConnInput/ConnOutput/
// ConnBufSpace shape rdt.Adapter requires. A background goroutine copies
// from the blocking reader into an internal.Ring; the core drains that
// ring without ever blocking on it. Output is the mirror image: the core
// writes into an outbound internal.Ring and a background goroutine drains
// it to the blocking writer.
type StdStreams struct {
	in  internal.Ring
	out internal.Ring

	mu      sync.Mutex
	inEOF   bool
	closed  bool
	closeCh chan struct{}
}

// NewStdStreams starts the background copy goroutines and returns a ready
// StdStreams. Close stops them.
func NewStdStreams(r io.Reader, w io.Writer) *StdStreams {
	s := &StdStreams{
		in:      internal.Ring{Buf: make([]byte, stdStreamRingSize)},
		out:     internal.Ring{Buf: make([]byte, stdStreamRingSize)},
		closeCh: make(chan struct{}),
	}
	go s.pumpIn(r)
	go s.pumpOut(w)
	return s
}

func (s *StdStreams) pumpIn(r io.Reader) {
	backoff := internal.NewBackoff(internal.BackoffStdio)
	buf := make([]byte, 4096)
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			s.writeIn(buf[:n])
			backoff.Hit()
		}
		if err != nil {
			s.mu.Lock()
			s.inEOF = true
			s.mu.Unlock()
			return
		}
		if n == 0 {
			backoff.Miss()
		}
	}
}

// writeIn blocks (via backoff) until the ring has room, rather than
// dropping input the host never asked to shed.
func (s *StdStreams) writeIn(b []byte) {
	backoff := internal.NewBackoff(internal.BackoffStdio)
	for len(b) > 0 {
		s.mu.Lock()
		n, err := s.in.Write(b)
		s.mu.Unlock()
		if err == nil {
			b = b[n:]
			backoff.Hit()
			continue
		}
		backoff.Miss()
	}
}

func (s *StdStreams) pumpOut(w io.Writer) {
	backoff := internal.NewBackoff(internal.BackoffStdio)
	buf := make([]byte, 4096)
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}
		s.mu.Lock()
		n, err := s.out.Read(buf)
		s.mu.Unlock()
		if err != nil {
			backoff.Miss()
			continue
		}
		if _, werr := w.Write(buf[:n]); werr != nil {
			return
		}
		backoff.Hit()
	}
}

// ConnInput implements rdt.Adapter: drains buffered input, returning -1
// once the background reader has hit EOF and the ring is empty.
func (s *StdStreams) ConnInput(buf []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.in.Read(buf)
	if err != nil {
		if s.inEOF {
			return -1
		}
		return 0
	}
	return n
}

// ConnOutput implements rdt.Adapter: buffers data for the background
// writer, never blocking.
func (s *StdStreams) ConnOutput(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.out.Write(buf)
	if err != nil {
		return 0
	}
	return n
}

// ConnBufSpace implements rdt.Adapter.
func (s *StdStreams) ConnBufSpace() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Free()
}

// Close stops the background pump goroutines.
func (s *StdStreams) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.closeCh)
}
