package card

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mverdon/cardwire/pkg/apdu"
)

func TestRetrySucceedsAfterTransportFailures(t *testing.T) {
	h := &scriptedHandle{replies: []reply{
		{err: errors.New("transient fault")},
		{err: errors.New("transient fault")},
		{data: apdu.Hex("CA FE 90 00")},
	}}
	delay := 20 * time.Millisecond
	c := New(h, WithRetry(3, delay))

	start := time.Now()
	res, err := c.TransmitWithRetry(apdu.Hex("00 B0 00 00 02"), 2)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("TransmitWithRetry: %v", err)
	}
	if diff := cmp.Diff(apdu.Hex("CA FE"), res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if len(h.calls) != 3 {
		t.Errorf("attempts: got %d, want 3", len(h.calls))
	}
	// Two failed attempts, so two inter-attempt delays.
	if elapsed < 2*delay {
		t.Errorf("elapsed %v, want at least %v of back-off", elapsed, 2*delay)
	}
}

func TestRetrySuccessIsImmediate(t *testing.T) {
	h := &scriptedHandle{replies: []reply{{data: apdu.Hex("90 00")}}}
	delay := 50 * time.Millisecond
	c := New(h, WithRetry(3, delay))

	start := time.Now()
	if _, err := c.TransmitWithRetry(apdu.Hex("00 A4 04 00"), 0); err != nil {
		t.Fatalf("TransmitWithRetry: %v", err)
	}
	if len(h.calls) != 1 {
		t.Errorf("attempts: got %d, want 1", len(h.calls))
	}
	if elapsed := time.Since(start); elapsed >= delay {
		t.Errorf("a first-attempt success must not sleep, took %v", elapsed)
	}
}

func TestRetryReturnsStatusFailureAsData(t *testing.T) {
	// A card that consistently reports 6A82 exhausts the budget, but the
	// outcome is a result, not an error: status words are data.
	h := &scriptedHandle{replies: []reply{
		{data: apdu.Hex("6A 82")},
		{data: apdu.Hex("6A 82")},
		{data: apdu.Hex("6A 82")},
	}}
	c := New(h, WithRetry(3, time.Millisecond))

	res, err := c.TransmitWithRetry(apdu.Hex("00 A4 04 00"), 0)
	if err != nil {
		t.Fatalf("TransmitWithRetry: %v", err)
	}
	if res.SW() != apdu.SWErrFileNotFound {
		t.Errorf("status: got %s, want 6A82", res.SW())
	}
	if len(h.calls) != 3 {
		t.Errorf("attempts: got %d, want full budget of 3", len(h.calls))
	}
}

func TestRetryAcceptsContinuationStatus(t *testing.T) {
	// 61XX is terminal for the retry layer: the transceiver already did
	// what it could with it (here chaining is disabled to surface it).
	h := &scriptedHandle{replies: []reply{{data: apdu.Hex("61 10")}}}
	c := New(h, WithMaxContinuations(0), WithRetry(3, time.Millisecond))

	res, err := c.TransmitWithRetry(apdu.Hex("00 A4 04 00"), 0)
	if err != nil {
		t.Fatalf("TransmitWithRetry: %v", err)
	}
	if res.SW1 != 0x61 {
		t.Errorf("status: got %s, want 61XX", res.SW())
	}
	if len(h.calls) != 1 {
		t.Errorf("attempts: got %d, want 1 (no retry on 61XX)", len(h.calls))
	}
}

func TestRetrySurfacesLastTransportError(t *testing.T) {
	first := errors.New("fault A")
	last := errors.New("fault B")
	h := &scriptedHandle{replies: []reply{{err: first}, {err: first}, {err: last}}}
	c := New(h, WithRetry(3, time.Millisecond))

	_, err := c.TransmitWithRetry(apdu.Hex("00 A4 04 00"), 0)
	if !errors.Is(err, last) {
		t.Errorf("expected last transport error, got %v", err)
	}
	if len(h.calls) != 3 {
		t.Errorf("attempts: got %d, want 3", len(h.calls))
	}
}

func TestRetryNeverRetriesReleasedHandle(t *testing.T) {
	h := &scriptedHandle{}
	c := New(h, WithRetry(3, time.Minute))

	if err := c.Disconnect(LeaveCard); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	start := time.Now()
	_, err := c.TransmitWithRetry(apdu.Hex("00 A4 04 00"), 0)
	if !errors.Is(err, ErrCardReleased) {
		t.Fatalf("got %v, want ErrCardReleased", err)
	}
	if len(h.calls) != 0 {
		t.Errorf("transport touched on released handle: %d calls", len(h.calls))
	}
	if time.Since(start) > time.Second {
		t.Error("lifecycle errors must fail fast, not wait out the retry delay")
	}
}

func TestRetrySingleAttemptBudget(t *testing.T) {
	h := &scriptedHandle{replies: []reply{{data: apdu.Hex("6A 82")}, {data: apdu.Hex("90 00")}}}
	c := New(h, WithRetry(1, time.Millisecond))

	res, err := c.TransmitWithRetry(apdu.Hex("00 A4 04 00"), 0)
	if err != nil {
		t.Fatalf("TransmitWithRetry: %v", err)
	}
	if res.SW() != apdu.SWErrFileNotFound {
		t.Errorf("status: got %s, want the only attempt's 6A82", res.SW())
	}
	if len(h.calls) != 1 {
		t.Errorf("attempts: got %d, want 1", len(h.calls))
	}
}
