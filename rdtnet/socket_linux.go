//go:build linux

package rdtnet

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// socketTuneBufBytes is the receive/send buffer size requested from the
// kernel, generous enough to absorb a burst of retransmits without the
// datagram layer itself ever blocking.
const socketTuneBufBytes = 1 << 20

// tuneSocket applies Linux-specific socket options: bigger send/receive
// buffers and SO_REUSEADDR, the same two knobs most UDP-based transports
// in this corpus reach for via golang.org/x/sys/unix rather than the
// limited net.UDPConn setters.
func tuneSocket(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("rdtnet: syscall conn: %w", err)
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, socketTuneBufBytes); e != nil {
			sockErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, socketTuneBufBytes); e != nil {
			sockErr = e
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return fmt.Errorf("rdtnet: control: %w", err)
	}
	return sockErr
}
