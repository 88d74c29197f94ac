package validators

import "testing"

func TestSanitizeStringTrimsAndCaps(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"trims whitespace", "  MG Road  ", 100, "MG Road"},
		{"drops nul bytes", "MG\x00 Road", 100, "MG Road"},
		{"no cap when zero", "  long address  ", 0, "long address"},
		{"caps at limit", "abcdef", 4, "abcd"},
		{"counts runes not bytes", "héllo", 3, "hél"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input, tc.maxLen); got != tc.want {
				t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}
