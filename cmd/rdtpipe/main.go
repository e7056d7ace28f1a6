// Command rdtpipe pipes a local byte stream (stdin/stdout) to a peer over
// UDP through the rdt reliable transport core, configured by a YAML file
// giving the peer address and connection tuning. The file's lossy section
// (simulated network impairments) is parsed but not applied by this
// command: datagrams go straight to the UDP socket.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rdtlab/rdt/internal"
	"github.com/rdtlab/rdt/rdt"
	"github.com/rdtlab/rdt/rdtnet"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "rdtpipe",
		Short: "Pipe stdin/stdout to a peer over a reliable datagram transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, verbose)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "rdtpipe.yaml", "path to YAML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable trace-level logging to stderr")
	return cmd
}

func run(configPath string, verbose bool) error {
	cfg, err := rdtnet.LoadDemoConfig(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = internal.LevelTrace
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	udp, err := rdtnet.DialUDP(cfg.Listen, cfg.Peer, logger)
	if err != nil {
		return err
	}
	logger.Info("dialed peer", slog.Any("peer", udp.Peer()))
	streams := rdtnet.NewStdStreams(os.Stdin, os.Stdout)
	adapter := &rdtnet.PipeAdapter{UDPDatagram: udp, StdStreams: streams}

	connCfg := cfg.ConnConfig()
	connCfg.Logger = logger
	conn := rdt.Init(adapter, connCfg)

	tickPeriod := connCfg.TickPeriod
	if tickPeriod <= 0 {
		tickPeriod = rdt.DefaultTickPeriod
	}
	ticker := rdtnet.NewTickerSource(tickPeriod, conn.OnTick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go readLoop(conn, udp)
	go inputLoop(conn)

	for !conn.Destroyed() {
		select {
		case <-sigCh:
			return nil
		case <-time.After(50 * time.Millisecond):
			conn.OnOutputSpace()
		}
	}
	return nil
}

// readLoop polls the UDP socket for inbound datagrams and hands each to
// the connection driver. This is the one blocking loop in the demo: the
// core's own entry points never block, but something has to wait on the
// socket.
func readLoop(conn *rdt.Conn, udp *rdtnet.UDPDatagram) {
	buf := make([]byte, rdt.MaxSegDataSize+rdt.HeaderSize)
	for !conn.Destroyed() {
		n := udp.ReadDatagram(buf)
		if n > 0 {
			conn.OnDatagram(buf[:n])
		}
	}
}

// inputLoop polls for newly available input on a short interval; a real
// adapter could instead wake this from a readiness notification, but
// stdin offers none portably.
func inputLoop(conn *rdt.Conn) {
	for !conn.Destroyed() {
		conn.OnInputReady()
		time.Sleep(10 * time.Millisecond)
	}
}
