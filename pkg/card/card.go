// Package card implements the APDU transaction layer over a connected
// smart card: a transceiver that resolves ISO 7816-4 response chaining
// (61XX / GET RESPONSE), a retry wrapper for flaky transports, and a
// session guard that serializes all operations on one handle.
//
// Card-reported outcomes are data, not errors: any status word other
// than success or continuation is returned inside the TransmitResult for
// the caller to interpret. Only transport and lifecycle faults surface
// as Go errors.
package card

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mverdon/cardwire/pkg/apdu"
)

// Recognized defaults for the transaction layer knobs.
const (
	DefaultMaxContinuations = 3
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = 100 * time.Millisecond
)

// ErrCardReleased is returned by any operation on a card whose driver
// session has been released. It marks a lifecycle error, not a transient
// condition: TransmitWithRetry never retries it.
var ErrCardReleased = errors.New("card handle released")

// TransmitResult is the fully assembled answer of one logical command,
// after any response chaining. SW1/SW2 are the last status word observed.
type TransmitResult struct {
	Data []byte
	SW1  byte
	SW2  byte
}

// SW returns the status word of the result.
func (r *TransmitResult) SW() apdu.StatusWord {
	return apdu.NewStatusWord(r.SW1, r.SW2)
}

// Card is one session with a physical card. All operations are
// serialized on an internal lock so concurrent callers can never
// interleave partial transactions; ordering among waiters is unspecified.
type Card struct {
	mu       sync.Mutex
	handle   Handle
	released bool

	atr              []byte
	maxContinuations int
	maxRetries       int
	retryDelay       time.Duration
	log              *slog.Logger
	record           func(apdu.Trace)
}

// Option configures a Card at construction time.
type Option func(*Card)

// WithMaxContinuations bounds the number of GET RESPONSE follow-ups a
// single Transmit will issue against a card that keeps answering 61XX.
func WithMaxContinuations(n int) Option {
	return func(c *Card) { c.maxContinuations = n }
}

// WithRetry sets the attempt budget and the fixed inter-attempt delay
// used by TransmitWithRetry.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Card) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithLogger enables debug logging of transmissions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Card) { c.log = l }
}

// WithATR records the ATR captured at connection time.
func WithATR(atr []byte) Option {
	return func(c *Card) { c.atr = append([]byte(nil), atr...) }
}

// WithTraceRecorder installs a callback invoked after every Transmit
// with the trace of physical exchanges that fulfilled it, including
// GET RESPONSE follow-ups. Meant for diagnostics.
func WithTraceRecorder(f func(apdu.Trace)) Option {
	return func(c *Card) { c.record = f }
}

// New wraps a driver session handle.
func New(h Handle, opts ...Option) *Card {
	c := &Card{
		handle:           h,
		maxContinuations: DefaultMaxContinuations,
		maxRetries:       DefaultMaxRetries,
		retryDelay:       DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ATR returns the Answer-To-Reset captured when the card was connected,
// or nil if none was recorded.
func (c *Card) ATR() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.atr...)
}

// Status returns a snapshot of the card's presence state.
func (c *Card) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return Status{}, ErrCardReleased
	}
	st, err := c.handle.Status()
	if err != nil {
		return Status{}, fmt.Errorf("card status: %w", err)
	}
	return st, nil
}

// Disconnect eagerly releases the driver session with the given
// disposition. It is idempotent: once released, further calls return nil
// and every other operation fails with ErrCardReleased.
func (c *Card) Disconnect(d Disposition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil
	}
	c.released = true
	if err := c.handle.Release(d); err != nil {
		return fmt.Errorf("disconnect (%s): %w", d, err)
	}
	return nil
}

// Transmit executes one logical command and returns the fully assembled
// answer. expectedLen sizes the receive buffer (expectedLen+2 bytes, for
// the data plus the status trailer).
//
// When the card answers 61XX, Transmit issues GET RESPONSE follow-ups
// (Le capped at 255 per the one-byte short-APDU length field) until the
// card reports 9000, a non-continuation status, or the continuation
// budget is spent. A transport failure during a follow-up aborts only the
// chaining loop: the data accumulated so far is returned with the last
// observed status word and a nil error.
func (c *Card) Transmit(cmd []byte, expectedLen int) (*TransmitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transmitLocked(cmd, expectedLen)
}

func (c *Card) transmitLocked(cmd []byte, expectedLen int) (*TransmitResult, error) {
	if c.released {
		return nil, ErrCardReleased
	}
	if expectedLen < 0 {
		expectedLen = 0
	}

	rcv := make([]byte, expectedLen+2)
	n, err := c.handle.Exchange(cmd, rcv)
	if err != nil {
		return nil, fmt.Errorf("transmit: %w", err)
	}

	split, sw := apdu.Split(rcv[:n])
	data := append([]byte(nil), split...)

	trace := apdu.Trace{{
		Command: append([]byte(nil), cmd...),
		Data:    split,
		SW:      sw,
	}}

	if sw.HasMoreData() && c.maxContinuations > 0 {
		data, sw = c.drainLocked(data, sw, &trace)
	}

	if c.log != nil {
		c.log.Debug("transmit",
			"cmd_len", len(cmd),
			"data_len", len(data),
			"sw", fmt.Sprintf("%04X", uint16(sw)),
			"exchanges", len(trace))
	}
	if c.record != nil {
		c.record(trace)
	}

	return &TransmitResult{Data: data, SW1: sw.SW1(), SW2: sw.SW2()}, nil
}

// drainLocked runs the GET RESPONSE continuation loop after an initial
// 61XX status. It returns the accumulated data and the last status word
// observed on the wire.
func (c *Card) drainLocked(data []byte, sw apdu.StatusWord, trace *apdu.Trace) ([]byte, apdu.StatusWord) {
	remaining := int(sw.SW2())

	for count := 0; remaining > 0 && count < c.maxContinuations; {
		le := remaining
		if le > apdu.MaxShortLc {
			le = apdu.MaxShortLc
		}
		getCmd := apdu.GetResponse(byte(le))
		rcv := make([]byte, le+2)

		n, err := c.handle.Exchange(getCmd, rcv)
		if err != nil {
			// A failed follow-up aborts only the loop; the caller still
			// gets whatever was assembled, under the last status word.
			if c.log != nil {
				c.log.Debug("get response failed", "err", err, "accumulated", len(data))
			}
			return data, sw
		}

		chunk, got := apdu.Split(rcv[:n])
		*trace = append(*trace, apdu.Transaction{Command: getCmd, Data: chunk, SW: got})

		if n < 2 {
			// Malformed reply: nothing trustworthy was observed.
			return data, sw
		}

		sw = got
		switch {
		case got.IsSuccess():
			return append(data, chunk...), sw
		case got.HasMoreData():
			data = append(data, chunk...)
			remaining = int(got.SW2())
			count++
		default:
			// Any other status ends the exchange as-is; nothing is
			// appended and nothing is retried here.
			return data, sw
		}
	}

	return data, sw
}
