package apdu

import (
	"bytes"
	"fmt"
)

// APDU limits according to ISO 7816-3.
const (
	// MaxShortLc is the maximum data length (Nc) encodable in Short Length mode (1 byte).
	MaxShortLc = 255

	// MaxShortLe is the maximum expected response length (Ne) encodable in
	// Short Length mode. In Short mode, 0x00 encodes 256.
	MaxShortLe = 256

	// MaxExtendedLc is the limit for Lc in Extended mode (16-bit unsigned).
	MaxExtendedLc = 65535

	// MaxExtendedLe is the maximum Ne encodable in Extended Length mode.
	// In Extended mode, 0x0000 encodes 65536.
	MaxExtendedLe = 65536
)

// Instruction bytes used or commonly met by this package.
const (
	InsSelect      byte = 0xA4
	InsReadBinary  byte = 0xB0
	InsReadRecord  byte = 0xB2
	InsGetResponse byte = 0xC0
	InsGetData     byte = 0xCA
)

// Command represents a Command APDU before encoding. The header bytes are
// carried raw; interpretation of CLA bit fields (chaining, channels,
// secure messaging) is left to the caller.
type Command struct {
	Cla  byte
	Ins  byte
	P1   byte
	P2   byte
	Data []byte
	Le   int // Expected response length (Ne). 0 means no response expected.
}

// NewCommand creates a Command with the given header, payload and
// expected response length.
func NewCommand(cla, ins, p1, p2 byte, data []byte, le int) *Command {
	return &Command{Cla: cla, Ins: ins, P1: p1, P2: p2, Data: data, Le: le}
}

// Encode serializes the command into its C-APDU byte representation.
// Short or Extended length encoding is selected automatically from the
// payload length (Nc) and the expected response length (Ne), covering
// ISO 7816-3 cases 1 through 4.
func (c *Command) Encode() ([]byte, error) {
	nc := len(c.Data)
	ne := c.Le

	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("data length %d exceeds extended Lc limit %d", nc, MaxExtendedLc)
	}
	if ne < 0 || ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length %d out of range [0, %d]", ne, MaxExtendedLe)
	}

	buf := new(bytes.Buffer)
	buf.WriteByte(c.Cla)
	buf.WriteByte(c.Ins)
	buf.WriteByte(c.P1)
	buf.WriteByte(c.P2)

	isExtended := nc > MaxShortLc || ne > MaxShortLe

	// Lc field and data field (cases 3 and 4).
	if nc > 0 {
		if !isExtended {
			buf.WriteByte(byte(nc))
		} else {
			// Extended Lc: 00 flag + 2-byte big-endian length.
			buf.WriteByte(0x00)
			buf.WriteByte(byte(nc >> 8))
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	// Le field (cases 2 and 4).
	if ne > 0 {
		if !isExtended {
			if ne == MaxShortLe {
				buf.WriteByte(0x00) // 0x00 encodes 256
			} else {
				buf.WriteByte(byte(ne))
			}
		} else {
			// Case 2 Extended carries a leading 00 flag when Lc is absent.
			if nc == 0 {
				buf.WriteByte(0x00)
			}
			if ne == MaxExtendedLe {
				buf.WriteByte(0x00)
				buf.WriteByte(0x00)
			} else {
				buf.WriteByte(byte(ne >> 8))
				buf.WriteByte(byte(ne))
			}
		}
	}

	return buf.Bytes(), nil
}

// String returns a readable summary of the command meta-data.
func (c *Command) String() string {
	return fmt.Sprintf("CLA: %02X, INS: %02X, P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Cla, c.Ins, c.P1, c.P2, len(c.Data), c.Le)
}

// GetResponse builds the GET RESPONSE command used to drain pending
// response bytes after a 61XX status: 00 C0 00 00 Le.
func GetResponse(le byte) []byte {
	return []byte{0x00, InsGetResponse, 0x00, 0x00, le}
}
