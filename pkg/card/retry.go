package card

import (
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// errNonTerminalStatus signals the retry engine that the card answered
// with a status word worth another attempt. It never escapes this file:
// status-word failures are data, not errors.
var errNonTerminalStatus = errors.New("non-terminal status word")

// TransmitWithRetry repeats Transmit until a terminal outcome or the
// attempt budget (maxRetries, default 3) is spent, sleeping the fixed
// retryDelay (default 100ms) between attempts.
//
// An attempt is terminal when the status word is 9000, when it is 61XX
// (already resolved by Transmit's own chaining, accepted as-is), or when
// it is the last permitted attempt. Any other status word triggers a
// retry; if the budget runs out that way, the last result is returned
// with a nil error and the caller inspects SW1/SW2. Transport errors are
// retried too, and the last one is surfaced after exhaustion. A released
// handle is never retried.
func (c *Card) TransmitWithRetry(cmd []byte, expectedLen int) (*TransmitResult, error) {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(attempts-1))

	var last *TransmitResult
	res, err := backoff.RetryWithData(func() (*TransmitResult, error) {
		res, err := c.Transmit(cmd, expectedLen)
		if err != nil {
			if errors.Is(err, ErrCardReleased) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		sw := res.SW()
		if sw.IsSuccess() || sw.HasMoreData() {
			return res, nil
		}
		last = res
		return nil, errNonTerminalStatus
	}, policy)

	if err != nil {
		if errors.Is(err, errNonTerminalStatus) {
			return last, nil
		}
		return nil, err
	}
	return res, nil
}
