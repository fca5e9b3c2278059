package models

import "testing"

func TestFormatTokenCode(t *testing.T) {
	cases := []struct {
		tokenType string
		number    uint
		want      string
	}{
		{"P", 1, "P1"},
		{"P", 42, "P42"},
		{"V", 7, "V7"},
		{"VIP", 100, "VIP100"},
	}

	for _, tt := range cases {
		if got := FormatTokenCode(tt.tokenType, tt.number); got != tt.want {
			t.Fatalf("FormatTokenCode(%q, %d)=%q, want %q", tt.tokenType, tt.number, got, tt.want)
		}
	}
}
