package rdt

import (
	"log/slog"

	"github.com/rdtlab/rdt/internal"
)

// logger is embedded by Conn to give every package-internal call site a
// nil-safe logging helper without threading a *slog.Logger through every
// function signature.
type logger struct {
	log *slog.Logger
}

func (l logger) debug(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(l.log, slog.LevelDebug, msg, attrs...)
}

func (l logger) trace(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(l.log, internal.LevelTrace, msg, attrs...)
}

func (l logger) logerr(msg string, err error, attrs ...slog.Attr) {
	internal.LogAttrs(l.log, slog.LevelError, msg, append([]slog.Attr{slog.Any("err", err)}, attrs...)...)
}

func (l logger) traceSeg(msg string, seg Segment) {
	l.trace(msg,
		slog.Uint64("seg.seq", uint64(seg.SEQ)),
		slog.Uint64("seg.ack", uint64(seg.ACK)),
		slog.Uint64("seg.wnd", uint64(seg.WND)),
		slog.String("seg.flags", seg.Flags.String()),
		slog.Int("seg.data", seg.DataLen()),
	)
}
