package card

// Transport is the blocking send/receive primitive of a connected card.
// Exchange writes cmd to the card and reads the reply into rcv, returning
// the number of bytes the card actually wrote. A reply larger than rcv is
// truncated to len(rcv), mirroring the fixed receive-buffer contract of
// the underlying driver call.
type Transport interface {
	Exchange(cmd, rcv []byte) (int, error)
}

// Handle is the driver-session surface a Card is built on: the transport
// plus the status and release calls of the session. The PC/SC-backed
// implementation lives in the reader package; tests supply fakes.
type Handle interface {
	Transport

	// Status returns a snapshot of the card state behind the session.
	Status() (Status, error)

	// Release ends the driver session with the given disposition.
	Release(d Disposition) error
}

// Status is a point-in-time snapshot of a card's presence state.
// It is not a live view; staleness is expected.
type Status struct {
	Present bool
	Empty   bool
	Mute    bool
	ATR     []byte
}

// Disposition tells the driver what to do with the card when a session
// is released.
type Disposition int

const (
	// LeaveCard keeps the card powered as-is.
	LeaveCard Disposition = iota
	// ResetCard warm-resets the card.
	ResetCard
	// UnpowerCard powers the card down.
	UnpowerCard
	// EjectCard ejects the card where the reader supports it.
	EjectCard
)

func (d Disposition) String() string {
	switch d {
	case LeaveCard:
		return "leave"
	case ResetCard:
		return "reset"
	case UnpowerCard:
		return "unpower"
	case EjectCard:
		return "eject"
	default:
		return "unknown"
	}
}
