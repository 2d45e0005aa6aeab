package apdu

// Split separates a raw card reply into its data field and status word.
//
// A well-formed reply carries at least the 2-byte trailer, in which case
// data is everything before it. Replies shorter than 2 bytes are a
// transport anomaly, not a card-reported state: data is nil and the
// status word defaults to SWAnomaly (0x0000), even when a single byte is
// present. Callers never need a length check before reading SW1/SW2.
func Split(raw []byte) (data []byte, sw StatusWord) {
	if len(raw) < 2 {
		return nil, SWAnomaly
	}
	trailer := len(raw) - 2
	return raw[:trailer], NewStatusWord(raw[trailer], raw[trailer+1])
}
