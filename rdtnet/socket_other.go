//go:build !linux

package rdtnet

import "net"

// tuneSocket is a no-op outside Linux: the SO_RCVBUF/SO_SNDBUF/SO_REUSEADDR
// tuning in socket_linux.go is an optimization, not a correctness
// requirement, so other platforms just fall back to Go's own defaults.
func tuneSocket(conn *net.UDPConn) error { return nil }
