package rdtnet

// PipeAdapter combines a UDPDatagram (the unreliable transport) and a
// StdStreams (the connection's byte streams) into a single rdt.Adapter,
// the shape the cmd/rdtpipe demo binary hands to rdt.Init.
type PipeAdapter struct {
	*UDPDatagram
	*StdStreams
}

// ConnRemove implements rdt.Adapter by tearing down both halves.
func (p *PipeAdapter) ConnRemove() {
	p.StdStreams.Close()
	p.UDPDatagram.Close()
}

// EndClient implements rdt.Adapter. The demo binary has no session layer
// above the pipe to notify, so there is nothing to do here beyond the
// teardown ConnRemove already performs.
func (p *PipeAdapter) EndClient() {}
