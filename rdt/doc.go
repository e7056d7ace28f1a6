// Package rdt implements the per-connection core of a simplified reliable
// transport protocol layered on an unreliable datagram service: in-order,
// checksum-verified, window-controlled byte streams with cumulative
// acknowledgement, Go-Back-N retransmission and a four-way FIN teardown.
//
// The core never performs I/O itself. It is driven by a host through four
// entry points - OnInputReady, OnDatagram, OnOutputSpace and OnTick - which
// must be invoked serially and never re-entrantly for the same Conn. All
// actual datagram/byte-stream I/O is supplied by the Adapter the host
// passes to Init; see package rdtnet for a reference implementation of
// that adapter over real sockets.
package rdt
