package protocol

import (
	"math"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		bytes int
	}{
		{"zero", 0, 1},
		{"max_1byte", 127, 1},
		{"min_2byte", 128, 2},
		{"max_2byte", 16383, 2},
		{"min_3byte", 16384, 3},
		{"max_uint32", math.MaxUint32, 5},
		{"max_uint64", math.MaxUint64, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := AppendUvarint(nil, tc.value)
			if len(buf) != tc.bytes {
				t.Errorf("AppendUvarint(%d) = %d bytes, want %d", tc.value, len(buf), tc.bytes)
			}
			if n := UvarintLen(tc.value); n != tc.bytes {
				t.Errorf("UvarintLen(%d) = %d, want %d", tc.value, n, tc.bytes)
			}
			v, n := Uvarint(buf)
			if n != tc.bytes || v != tc.value {
				t.Errorf("Uvarint = (%d, %d), want (%d, %d)", v, n, tc.value, tc.bytes)
			}
		})
	}
}

func TestUvarintErrors(t *testing.T) {
	if _, n := Uvarint(nil); n != -1 {
		t.Errorf("empty input: n = %d, want -1", n)
	}
	if _, n := Uvarint([]byte{0x80, 0x80}); n != -1 {
		t.Errorf("truncated input: n = %d, want -1", n)
	}
	long := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	if _, n := Uvarint(long); n != -2 {
		t.Errorf("overlong input: n = %d, want -2", n)
	}
}

func TestUvarintIgnoresTrailingBytes(t *testing.T) {
	v, n := Uvarint([]byte{0xAC, 0x02, 0xFF})
	if v != 300 || n != 2 {
		t.Errorf("Uvarint = (%d, %d), want (300, 2)", v, n)
	}
}
