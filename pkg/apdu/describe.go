package apdu

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

// Describe renders the trace as a human-readable report, one block per
// transaction. Response payloads that decode as BER-TLV are shown as a
// tag tree; anything else falls back to a plain hex dump.
func (t Trace) Describe() string {
	var sb strings.Builder
	for i, tx := range t {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%d] >> %s\n", i+1, hexUpper(tx.Command))
		fmt.Fprintf(&sb, "    << %d bytes | %s", len(tx.Data), tx.SW)
		if len(tx.Data) > 0 {
			sb.WriteString("\n")
			writeDataField(&sb, tx.Data)
		}
	}
	return sb.String()
}

func writeDataField(sb *strings.Builder, data []byte) {
	packets, err := bertlv.Decode(data)
	if err != nil || len(packets) == 0 {
		fmt.Fprintf(sb, "       %s", hexUpper(data))
		return
	}
	sb.WriteString(strings.Join(tlvLines(packets, 0), "\n"))
}

func tlvLines(packets []bertlv.TLV, depth int) []string {
	pad := "       " + strings.Repeat("  ", depth)
	var lines []string
	for _, p := range packets {
		if len(p.TLVs) > 0 {
			lines = append(lines, fmt.Sprintf("%sTag %s:", pad, p.Tag))
			lines = append(lines, tlvLines(p.TLVs, depth+1)...)
			continue
		}
		lines = append(lines, fmt.Sprintf("%sTag %s: %s (%q)", pad, p.Tag, hexUpper(p.Value), safeASCII(p.Value)))
	}
	return lines
}

func hexUpper(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// safeASCII replaces non-printable bytes with dots for display.
func safeASCII(data []byte) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 && r <= 126 {
			return r
		}
		return '.'
	}, string(data))
}

// Hex constructs a byte slice from a series of hex strings, ignoring
// spaces so inputs like "00 A4 04 00" work. It panics on invalid input
// and is meant for tests and fixed constants.
func Hex(parts ...string) []byte {
	cleaned := strings.ReplaceAll(strings.Join(parts, ""), " ", "")
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		panic(fmt.Sprintf("invalid hex input %q: %v", cleaned, err))
	}
	return data
}
