// Package reader is the thin PC/SC glue around the card package: context
// establishment, reader enumeration, card-presence polling, and session
// setup. Every call is a straight pass-through to the platform driver via
// ebfe/scard; the transaction logic lives in the card package.
package reader

import (
	"errors"
	"fmt"
	"time"

	"github.com/ebfe/scard"

	"github.com/mverdon/cardwire/pkg/card"
)

// ErrReaderNotFound is returned when the named reader is not attached.
var ErrReaderNotFound = errors.New("reader not found")

// ShareMode controls how the driver session is shared with other
// applications.
type ShareMode int

const (
	ShareShared ShareMode = iota
	ShareExclusive
	ShareDirect
)

// Protocol selects the transmission protocol negotiated at connect time.
type Protocol int

const (
	// ProtocolAny lets the driver negotiate T=0 or T=1.
	ProtocolAny Protocol = iota
	ProtocolT0
	ProtocolT1
)

// Reader wraps a PC/SC context. It is the entry point of the library:
// establish one, enumerate readers, then connect to a card.
type Reader struct {
	ctx *scard.Context
}

// New establishes a PC/SC context with the platform's card service.
func New() (*Reader, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish PC/SC context: %w", err)
	}
	return &Reader{ctx: ctx}, nil
}

// Close releases the PC/SC context. Cards connected through this Reader
// should be disconnected first.
func (r *Reader) Close() error {
	if err := r.ctx.Release(); err != nil {
		return fmt.Errorf("release PC/SC context: %w", err)
	}
	return nil
}

// List returns the names of the attached readers.
func (r *Reader) List() ([]string, error) {
	readers, err := r.ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	return readers, nil
}

// lookup verifies the reader is attached and returns its canonical name.
func (r *Reader) lookup(name string) (string, error) {
	readers, err := r.List()
	if err != nil {
		return "", err
	}
	for _, rd := range readers {
		if rd == name {
			return rd, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrReaderNotFound, name)
}

// GetStatus returns the current card-presence snapshot of the named
// reader without waiting for a state change.
func (r *Reader) GetStatus(name string) (card.Status, error) {
	return r.waitStatus(name, 0)
}

// WaitForCard blocks until the named reader signals a state change or the
// timeout elapses, then returns the resulting snapshot. The snapshot is
// returned even on timeout; callers inspect Present/Empty themselves.
func (r *Reader) WaitForCard(name string, timeout time.Duration) (card.Status, error) {
	return r.waitStatus(name, timeout)
}

func (r *Reader) waitStatus(name string, timeout time.Duration) (card.Status, error) {
	rd, err := r.lookup(name)
	if err != nil {
		return card.Status{}, err
	}
	states := []scard.ReaderState{
		{Reader: rd, CurrentState: scard.StateUnaware},
	}
	if err := r.ctx.GetStatusChange(states, timeout); err != nil {
		return card.Status{}, fmt.Errorf("get status change: %w", err)
	}
	return statusFromEventState(states[0].EventState, states[0].Atr), nil
}

// Connect opens a session with the card in the named reader and wraps it
// in a guarded card.Card. The ATR is snapshotted at connect time.
func (r *Reader) Connect(name string, mode ShareMode, proto Protocol, opts ...card.Option) (*card.Card, error) {
	rd, err := r.lookup(name)
	if err != nil {
		return nil, err
	}

	sc, err := r.ctx.Connect(rd, scardShareMode(mode), scardProtocol(proto))
	if err != nil {
		return nil, fmt.Errorf("connect to card on %q: %w", rd, err)
	}

	var atr []byte
	if st, err := sc.Status(); err == nil {
		atr = st.Atr
	}

	h := &scardHandle{ctx: r.ctx, card: sc, reader: rd}
	opts = append([]card.Option{card.WithATR(atr)}, opts...)
	return card.New(h, opts...), nil
}

func scardShareMode(m ShareMode) scard.ShareMode {
	switch m {
	case ShareExclusive:
		return scard.ShareExclusive
	case ShareDirect:
		return scard.ShareDirect
	default:
		return scard.ShareShared
	}
}

func scardProtocol(p Protocol) scard.Protocol {
	switch p {
	case ProtocolT0:
		return scard.ProtocolT0
	case ProtocolT1:
		return scard.ProtocolT1
	default:
		return scard.ProtocolAny
	}
}

// statusFromEventState maps PC/SC event-state flags onto a card.Status
// snapshot.
func statusFromEventState(f scard.StateFlag, atr []byte) card.Status {
	return card.Status{
		Present: f&scard.StatePresent != 0,
		Empty:   f&scard.StateEmpty != 0,
		Mute:    f&scard.StateMute != 0,
		ATR:     append([]byte(nil), atr...),
	}
}
