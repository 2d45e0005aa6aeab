package reader

import (
	"fmt"

	"github.com/ebfe/scard"

	"github.com/mverdon/cardwire/pkg/card"
)

// scardHandle adapts a connected scard.Card to the card.Handle surface.
// The reader name is kept so Status can poll presence flags without
// touching the session itself.
type scardHandle struct {
	ctx    *scard.Context
	card   *scard.Card
	reader string
}

var _ card.Handle = (*scardHandle)(nil)

// Exchange sends cmd and copies the card's reply into rcv. The driver
// call owns its own buffer; a reply longer than rcv is truncated, which
// matches the fixed receive-buffer contract of SCardTransmit.
func (h *scardHandle) Exchange(cmd, rcv []byte) (int, error) {
	resp, err := h.card.Transmit(cmd)
	if err != nil {
		return 0, err
	}
	return copy(rcv, resp), nil
}

// Status polls the reader's event state with a zero timeout.
func (h *scardHandle) Status() (card.Status, error) {
	states := []scard.ReaderState{
		{Reader: h.reader, CurrentState: scard.StateUnaware},
	}
	if err := h.ctx.GetStatusChange(states, 0); err != nil {
		return card.Status{}, fmt.Errorf("get status change: %w", err)
	}
	return statusFromEventState(states[0].EventState, states[0].Atr), nil
}

// Release disconnects the session with the given disposition.
func (h *scardHandle) Release(d card.Disposition) error {
	return h.card.Disconnect(scardDisposition(d))
}

func scardDisposition(d card.Disposition) scard.Disposition {
	switch d {
	case card.ResetCard:
		return scard.ResetCard
	case card.UnpowerCard:
		return scard.UnpowerCard
	case card.EjectCard:
		return scard.EjectCard
	default:
		return scard.LeaveCard
	}
}
