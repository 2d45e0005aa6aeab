package apdu

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommandEncode(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *Command
		expected string
	}{
		{
			name:     "Case 1: Header Only (No Data, No Le)",
			cmd:      NewCommand(0x00, InsSelect, 0x01, 0x02, nil, 0),
			expected: "00A40102",
		},
		{
			name:     "Case 2 Short: Le only",
			cmd:      NewCommand(0x00, InsReadBinary, 0x00, 0x00, nil, 10),
			expected: "00B000000A",
		},
		{
			name:     "Case 2 Short: Le=256 encodes as 00",
			cmd:      NewCommand(0x00, InsReadBinary, 0x00, 0x00, nil, MaxShortLe),
			expected: "00B0000000",
		},
		{
			name:     "Case 3 Short: Data only",
			cmd:      NewCommand(0x00, InsSelect, 0x04, 0x00, []byte{0xA0, 0x00}, 0),
			expected: "00A4040002A000",
		},
		{
			name:     "Case 4 Short: Data and Le",
			cmd:      NewCommand(0x00, InsSelect, 0x00, 0x00, []byte{0x01}, 10),
			expected: "00A4000001010A",
		},
		{
			name: "Case 3 Extended: Data > 255",
			cmd: func() *Command {
				longData := make([]byte, 260)
				return NewCommand(0x00, InsSelect, 0x00, 0x00, longData, 0)
			}(),
			// Extended Lc: 00 flag + 0104 (260) + data
			expected: "00A40000000104" + hex.EncodeToString(make([]byte, 260)),
		},
		{
			name:     "Case 2 Extended: Le=65536 encodes as 00 0000",
			cmd:      NewCommand(0x00, InsReadBinary, 0x00, 0x00, nil, MaxExtendedLe),
			expected: "00B00000000000",
		},
		{
			name: "Case 4 Extended: short data with extended Le",
			cmd:  NewCommand(0x00, InsSelect, 0x00, 0x00, []byte{0xAB}, 300),
			// Extended Lc: 00 0001 AB, then Le 012C (no extra flag, Lc present)
			expected: "00A400000000 01AB012C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Encode()
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			gotHex := strings.ToUpper(hex.EncodeToString(got))
			wantHex := strings.ToUpper(strings.ReplaceAll(tt.expected, " ", ""))
			if gotHex != wantHex {
				t.Errorf("Mismatch\nExpected: %s\nGot:      %s", wantHex, gotHex)
			}
		})
	}
}

func TestCommandEncodeLimits(t *testing.T) {
	if _, err := NewCommand(0, 0xA4, 0, 0, make([]byte, MaxExtendedLc+1), 0).Encode(); err == nil {
		t.Error("expected error for Lc above extended limit")
	}
	if _, err := NewCommand(0, 0xB0, 0, 0, nil, MaxExtendedLe+1).Encode(); err == nil {
		t.Error("expected error for Le above extended limit")
	}
	if _, err := NewCommand(0, 0xB0, 0, 0, nil, -1).Encode(); err == nil {
		t.Error("expected error for negative Le")
	}
}

func TestGetResponse(t *testing.T) {
	tests := []struct {
		le   byte
		want []byte
	}{
		{le: 0x05, want: []byte{0x00, 0xC0, 0x00, 0x00, 0x05}},
		{le: 0xFF, want: []byte{0x00, 0xC0, 0x00, 0x00, 0xFF}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, GetResponse(tt.le)); diff != "" {
			t.Errorf("GetResponse(0x%02X) mismatch (-want +got):\n%s", tt.le, diff)
		}
	}
}
