package rdt

// Flags is the segment flags bitmask. This protocol has no handshake and
// only one teardown shape, so only two bits are needed.
type Flags uint32

const (
	FlagFIN Flags = 1 << iota
	FlagACK
)

const flagMask = FlagFIN | FlagACK

// HasAny reports whether any bit of mask is set in flags.
func (f Flags) HasAny(mask Flags) bool { return f&mask != 0 }

// HasAll reports whether every bit of mask is set in flags.
func (f Flags) HasAll(mask Flags) bool { return f&mask == mask }

// Mask clears any bits outside the defined flag set.
func (f Flags) Mask() Flags { return f & flagMask }

func (f Flags) String() string {
	switch f.Mask() {
	case 0:
		return "[]"
	case FlagACK:
		return "[ACK]"
	case FlagFIN:
		return "[FIN]"
	case FlagFIN | FlagACK:
		return "[FIN,ACK]"
	}
	return "[?]"
}
