package rdt

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed wire header length in bytes:
// seqno(4) + ackno(4) + len(2) + flags(4) + window(2) + cksum(2).
const HeaderSize = 18

// MaxSegDataSize is the compile-time datagram-adapter payload limit,
// stable across the lifetime of a connection. The adapter in package
// rdtnet uses this same constant; it is not negotiated on the wire.
const MaxSegDataSize = 1400

// Segment is the decoded, in-memory representation of a wire segment.
// Payload is owned by whoever holds the Segment; Decode returns a Payload
// that aliases the caller's buffer; callers that retain a Segment past the
// call that produced it (e.g. appending to a receive queue entry) must
// copy Payload themselves.
type Segment struct {
	SEQ     Value
	ACK     Value
	Flags   Flags
	WND     Size
	Payload []byte
}

// DataLen returns the payload length of the segment.
func (seg Segment) DataLen() int { return len(seg.Payload) }

// SegmentEnd returns the sequence number one past the last payload byte,
// i.e. SEQ + len(Payload). FIN segments carry an empty payload, so
// SegmentEnd for a bare FIN equals SEQ.
func (seg Segment) SegmentEnd() Value { return Add(seg.SEQ, Size(len(seg.Payload))) }

func (seg Segment) String() string {
	return fmt.Sprintf("<SEQ=%d><ACK=%d><WND=%d>%s len=%d", seg.SEQ, seg.ACK, seg.WND, seg.Flags.String(), len(seg.Payload))
}

// Encode writes seg into dst in wire format (header then payload), computes
// and stores the checksum over the whole segment with the checksum field
// treated as zero, and returns the total encoded length. dst must have
// capacity for at least HeaderSize+len(seg.Payload) bytes.
func Encode(dst []byte, seg Segment) (int, error) {
	total := HeaderSize + len(seg.Payload)
	if len(dst) < total {
		return 0, errBufferTooSmall
	}
	binary.BigEndian.PutUint32(dst[0:4], uint32(seg.SEQ))
	binary.BigEndian.PutUint32(dst[4:8], uint32(seg.ACK))
	binary.BigEndian.PutUint16(dst[8:10], uint16(total))
	binary.BigEndian.PutUint32(dst[10:14], uint32(seg.Flags.Mask()))
	binary.BigEndian.PutUint16(dst[14:16], uint16(seg.WND))
	binary.BigEndian.PutUint16(dst[16:18], 0) // cksum placeholder, zeroed for the checksum pass.
	copy(dst[HeaderSize:total], seg.Payload)
	cksum := checksum16(dst[:total])
	binary.BigEndian.PutUint16(dst[16:18], cksum)
	return total, nil
}

// Decode validates and parses a received buffer into a Segment. The
// datagram layer has no error channel for malformed frames, so callers
// should treat a non-nil error as "drop this datagram", not as an event
// worth surfacing upward. The returned Segment's Payload aliases buf.
func Decode(buf []byte) (Segment, error) {
	if len(buf) < HeaderSize {
		return Segment{}, newSegmentError("shorter than header")
	}
	wantLen := binary.BigEndian.Uint16(buf[8:10])
	if int(wantLen) != len(buf) {
		return Segment{}, newSegmentError("len field does not match buffer size")
	}
	stored := binary.BigEndian.Uint16(buf[16:18])
	binary.BigEndian.PutUint16(buf[16:18], 0)
	got := checksum16(buf)
	binary.BigEndian.PutUint16(buf[16:18], stored) // restore caller's buffer contents.
	if got != stored {
		return Segment{}, newSegmentError("checksum mismatch")
	}
	seg := Segment{
		SEQ:     Value(binary.BigEndian.Uint32(buf[0:4])),
		ACK:     Value(binary.BigEndian.Uint32(buf[4:8])),
		Flags:   Flags(binary.BigEndian.Uint32(buf[10:14])).Mask(),
		WND:     Size(binary.BigEndian.Uint16(buf[14:16])),
		Payload: buf[HeaderSize:],
	}
	return seg, nil
}
