package apdu

// Transaction records one completed physical exchange: the raw command
// bytes sent to the card and the split reply.
type Transaction struct {
	Command []byte
	Data    []byte
	SW      StatusWord
}

// IsSuccess reports whether the exchange ended with 9000.
func (t *Transaction) IsSuccess() bool {
	return t.SW.IsSuccess()
}

// Trace is the chronological sequence of transactions that fulfilled one
// logical command, including any GET RESPONSE follow-ups issued while the
// card kept answering 61XX.
type Trace []Transaction

// Last returns the final transaction of the trace, or nil when empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess reports whether the final transaction succeeded. Intermediate
// 61XX statuses do not matter; the outcome of a logical exchange is its
// last status word.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	return last != nil && last.IsSuccess()
}
