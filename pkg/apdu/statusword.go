package apdu

import "fmt"

// Dynamic status word logic:
//
// Most status words are static 2-byte values (e.g. 0x9000), but ISO 7816-4
// defines ranges whose low byte carries contextual information:
//
// 1. '61XX': process completed, XX extra bytes available (GET RESPONSE).
// 2. '6CXX': wrong length, the correct Le is XX.
// 3. '63CX': warning, the low nibble of SW2 is a counter (e.g. PIN retries).

// StatusWord represents the two-byte status trailer (SW1-SW2) returned by
// the card.
type StatusWord uint16

// NewStatusWord creates a StatusWord from its two bytes.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

// SW1 returns the high byte of the status word.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the low byte of the status word.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// IsSuccess returns true for 9000 only. A 61XX continuation status is not
// a terminal success; the transceiver resolves it before callers see it
// unless the continuation budget ran out.
func (sw StatusWord) IsSuccess() bool {
	return sw == SWNoError
}

// HasMoreData returns true for 61XX: the card holds SW2 more bytes.
func (sw StatusWord) HasMoreData() bool {
	return sw.SW1() == 0x61
}

// IsWrongLength returns true for 6CXX: the command should be resent with
// Le = SW2.
func (sw StatusWord) IsWrongLength() bool {
	return sw.SW1() == 0x6C
}

// IsWarning returns true for the 62XX and 63XX warning ranges.
func (sw StatusWord) IsWarning() bool {
	sw1 := sw.SW1()
	return sw1 == 0x62 || sw1 == 0x63
}

// IsError returns true for the 64XX-6FXX execution and checking error ranges.
func (sw StatusWord) IsError() bool {
	sw1 := sw.SW1()
	return sw1 >= 0x64 && sw1 <= 0x6F
}

// IsCounter returns true for 63CX, where the low nibble of SW2 is a counter.
func (sw StatusWord) IsCounter() bool {
	return sw.SW1() == 0x63 && sw.SW2()&0xF0 == 0xC0
}

// String returns the hex form plus a human-readable description, e.g.
// "[6A82] File or application not found". Dynamic ranges (61XX, 6CXX,
// 63CX) are rendered with their embedded value.
func (sw StatusWord) String() string {
	sw1 := sw.SW1()
	sw2 := sw.SW2()

	switch {
	case sw1 == 0x61:
		return fmt.Sprintf("[%04X] Process completed, %d bytes available", uint16(sw), sw2)
	case sw1 == 0x6C:
		return fmt.Sprintf("[%04X] Wrong length, correct Le is %d", uint16(sw), sw2)
	case sw.IsCounter():
		return fmt.Sprintf("[%04X] Warning: state changed, counter = %d", uint16(sw), sw2&0x0F)
	}

	if desc, ok := swDescriptions[sw]; ok {
		return fmt.Sprintf("[%04X] %s", uint16(sw), desc)
	}
	return fmt.Sprintf("[%04X] %s", uint16(sw), sw.categoryDescription())
}

// categoryDescription provides a fallback description based on SW1.
func (sw StatusWord) categoryDescription() string {
	switch sw.SW1() {
	case 0x00:
		return "No status (transport anomaly)"
	case 0x62:
		return "Warning: NV memory unchanged"
	case 0x63:
		return "Warning: NV memory changed"
	case 0x64:
		return "Execution error: NV memory unchanged"
	case 0x65:
		return "Execution error: NV memory changed"
	case 0x66:
		return "Execution error: security issue"
	case 0x68:
		return "Checking error: function not supported"
	case 0x69:
		return "Checking error: command not allowed"
	case 0x6A:
		return "Checking error: wrong parameters"
	default:
		return "Unknown status"
	}
}

// Status word values defined in ISO/IEC 7816-4 that this module and its
// callers commonly meet.
const (
	SWNoError StatusWord = 0x9000

	// SWAnomaly is the defensive default reported when the driver returned
	// fewer than 2 bytes. It is not a card-defined value.
	SWAnomaly StatusWord = 0x0000

	SWWarnEOFReached      StatusWord = 0x6282
	SWWarnFileDeactivated StatusWord = 0x6283
	SWWarnFileFilled      StatusWord = 0x6381
	SWErrMemoryFailure    StatusWord = 0x6581
	SWErrWrongLength      StatusWord = 0x6700
	SWErrSecurityStatus   StatusWord = 0x6982
	SWErrAuthBlocked      StatusWord = 0x6983
	SWErrConditionsNotMet StatusWord = 0x6985
	SWErrIncorrectData    StatusWord = 0x6A80
	SWErrFuncNotSupported StatusWord = 0x6A81
	SWErrFileNotFound     StatusWord = 0x6A82
	SWErrRecordNotFound   StatusWord = 0x6A83
	SWErrNotEnoughMemory  StatusWord = 0x6A84
	SWErrIncorrectP1P2    StatusWord = 0x6A86
	SWErrRefDataNotFound  StatusWord = 0x6A88
	SWErrWrongP1P2        StatusWord = 0x6B00
	SWErrInsNotSupported  StatusWord = 0x6D00
	SWErrClaNotSupported  StatusWord = 0x6E00
	SWErrUnknown          StatusWord = 0x6F00
)

var swDescriptions = map[StatusWord]string{
	SWNoError:             "Success",
	SWAnomaly:             "No status (transport anomaly)",
	SWWarnEOFReached:      "End of file or record reached",
	SWWarnFileDeactivated: "Selected file deactivated",
	SWWarnFileFilled:      "File filled up by last write",
	SWErrMemoryFailure:    "Memory failure",
	SWErrWrongLength:      "Wrong length",
	SWErrSecurityStatus:   "Security status not satisfied",
	SWErrAuthBlocked:      "Authentication method blocked",
	SWErrConditionsNotMet: "Conditions of use not satisfied",
	SWErrIncorrectData:    "Incorrect parameters in data field",
	SWErrFuncNotSupported: "Function not supported",
	SWErrFileNotFound:     "File or application not found",
	SWErrRecordNotFound:   "Record not found",
	SWErrNotEnoughMemory:  "Not enough memory space in file",
	SWErrIncorrectP1P2:    "Incorrect parameters P1-P2",
	SWErrRefDataNotFound:  "Referenced data not found",
	SWErrWrongP1P2:        "Wrong parameters P1-P2",
	SWErrInsNotSupported:  "Instruction not supported or invalid",
	SWErrClaNotSupported:  "Class not supported",
	SWErrUnknown:          "No precise diagnosis",
}
