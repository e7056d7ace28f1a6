// Package rdtnet is a reference implementation of the rdt.Adapter
// collaborators over real sockets and standard streams: everything the
// protocol core declares out of scope for itself.
package rdtnet

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/rdtlab/rdt/internal"
)

// UDPDatagram implements the datagram half of rdt.Adapter over a bound
// net.UDPConn. It is not itself the Adapter: callers combine it with a
// byte-stream adapter (StdStreams or similar) to build a full rdt.Adapter
// for one connection.
type UDPDatagram struct {
	conn   *net.UDPConn
	peer   *net.UDPAddr
	logger *slog.Logger
}

// DialUDP opens a UDP socket bound to localAddr (may be "" for any) and
// targeting peerAddr, and tunes it via tuneSocket.
func DialUDP(localAddr, peerAddr string, logger *slog.Logger) (*UDPDatagram, error) {
	peer, err := net.ResolveUDPAddr("udp", peerAddr)
	if err != nil {
		return nil, fmt.Errorf("rdtnet: resolve peer address: %w", err)
	}
	var local *net.UDPAddr
	if localAddr != "" {
		local, err = net.ResolveUDPAddr("udp", localAddr)
		if err != nil {
			return nil, fmt.Errorf("rdtnet: resolve local address: %w", err)
		}
	}
	conn, err := net.DialUDP("udp", local, peer)
	if err != nil {
		return nil, fmt.Errorf("rdtnet: dial udp: %w", err)
	}
	if err := tuneSocket(conn); err != nil && logger != nil {
		logger.Warn("rdtnet: socket tuning failed, continuing with defaults", slog.Any("err", err))
	}
	return &UDPDatagram{conn: conn, peer: peer, logger: logger}, nil
}

// SendDatagram implements rdt.Adapter. UDP sends are all-or-nothing from
// the caller's perspective: Write either accepts the whole datagram or
// returns an error, so a short write here signals something is wrong with
// the socket rather than ordinary backpressure.
func (u *UDPDatagram) SendDatagram(buf []byte) int {
	n, err := u.conn.Write(buf)
	if err != nil {
		internal.LogAttrs(u.logger, slog.LevelWarn, "udp write failed", slog.Any("err", err))
		return 0
	}
	return n
}

// ReadDatagram reads one datagram into buf and returns its length. No read
// deadline is set on the socket, so it blocks until a datagram arrives or
// the socket is closed; it returns 0 on any read error.
func (u *UDPDatagram) ReadDatagram(buf []byte) int {
	n, err := u.conn.Read(buf)
	if err != nil {
		if !isTimeout(err) {
			internal.LogAttrs(u.logger, slog.LevelWarn, "udp read failed", slog.Any("err", err))
		}
		return 0
	}
	return n
}

// Close releases the underlying socket.
func (u *UDPDatagram) Close() error { return u.conn.Close() }

// Peer returns the address this socket is connected to.
func (u *UDPDatagram) Peer() *net.UDPAddr { return u.peer }

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
