package apdu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		wantData []byte
		wantSW   StatusWord
	}{
		{
			name:     "data plus trailer",
			raw:      Hex("01 02 03 90 00"),
			wantData: []byte{0x01, 0x02, 0x03},
			wantSW:   SWNoError,
		},
		{
			name:     "trailer only",
			raw:      Hex("90 00"),
			wantData: []byte{},
			wantSW:   SWNoError,
		},
		{
			name:     "more data available",
			raw:      Hex("61 1A"),
			wantData: []byte{},
			wantSW:   NewStatusWord(0x61, 0x1A),
		},
		{
			name:     "single byte defaults both SW bytes to zero",
			raw:      []byte{0x90},
			wantData: nil,
			wantSW:   SWAnomaly,
		},
		{
			name:     "empty reply",
			raw:      nil,
			wantData: nil,
			wantSW:   SWAnomaly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, sw := Split(tt.raw)
			if diff := cmp.Diff(tt.wantData, data); diff != "" {
				t.Errorf("data mismatch (-want +got):\n%s", diff)
			}
			if sw != tt.wantSW {
				t.Errorf("sw: got %04X, want %04X", uint16(sw), uint16(tt.wantSW))
			}
		})
	}
}
