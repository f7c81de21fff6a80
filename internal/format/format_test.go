package format

import "testing"

func TestToRoman(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{1, "I"},
		{4, "IV"},
		{9, "IX"},
		{14, "XIV"},
		{40, "XL"},
		{90, "XC"},
		{444, "CDXLIV"},
		{1994, "MCMXCIV"},
		{3999, "MMMCMXCIX"},
		{0, "0"},
		{-7, "-7"},
	}

	for _, tt := range tests {
		if got := ToRoman(tt.input); got != tt.expected {
			t.Errorf("ToRoman(%d) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		scheme   string
		ghost    bool
		expected string
	}{
		{name: "arabic", n: 12, scheme: "arabic", expected: "12"},
		{name: "roman", n: 12, scheme: "roman", expected: "XII"},
		{name: "unknown scheme defaults to arabic", n: 12, scheme: "", expected: "12"},
		{name: "ghost arabic", n: 3, scheme: "arabic", ghost: true, expected: "[3]"},
		{name: "ghost roman", n: 3, scheme: "roman", ghost: true, expected: "[III]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNumber(tt.n, tt.scheme, tt.ghost); got != tt.expected {
				t.Errorf("FormatNumber(%d, %q, %v) = %q, expected %q", tt.n, tt.scheme, tt.ghost, got, tt.expected)
			}
		})
	}
}

func TestNiceSession(t *testing.T) {
	uuid := "7f4e474c-689c-4a6e-9d2f-1b3c5d7e9f01"

	tests := []struct {
		name       string
		sessionID  string
		label      string
		detectedID string
		expected   string
	}{
		{name: "label wins", sessionID: uuid, label: "Herbarium scans", detectedID: "BO0624_1", expected: "Herbarium scans"},
		{name: "label trimmed", sessionID: uuid, label: "  padded  ", expected: "padded"},
		{name: "detected id next", sessionID: uuid, detectedID: "BO0624_1", expected: "BO0624_1"},
		{name: "compact uuid fallback", sessionID: uuid, expected: "7F4E474C"},
		{name: "no session at all", expected: "—"},
		{name: "blank label ignored", sessionID: uuid, label: "   ", expected: "7F4E474C"},
		{name: "short session id used whole", sessionID: "ab-12", expected: "AB12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NiceSession(tt.sessionID, tt.label, tt.detectedID); got != tt.expected {
				t.Errorf("NiceSession = %q, expected %q", got, tt.expected)
			}
		})
	}
}
