package rdt

// TeardownState tracks which of the two four-way FIN exchange paths (if
// any) a connection is progressing through. The transition table lives in
// conn.go, next to the rest of the entry-point dispatch it's driven by -
// see (*Conn).OnDatagram and (*Conn).onInputEOF.
type TeardownState uint8

const (
	TeardownNone TeardownState = iota
	TeardownActiveClose
	TeardownPassiveClose
)

func (s TeardownState) String() string {
	switch s {
	case TeardownNone:
		return "NONE"
	case TeardownActiveClose:
		return "ACTIVE_CLOSE"
	case TeardownPassiveClose:
		return "PASSIVE_CLOSE"
	default:
		return "?"
	}
}
