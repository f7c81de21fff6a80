// Package format holds the small display helpers consumed by the gallery
// and export UI: page-number rendering and session display names.
package format

import (
	"strconv"
	"strings"
)

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ToRoman renders n as an uppercase roman numeral. Zero and negative values
// have no roman form and fall back to decimal.
func ToRoman(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.value {
			b.WriteString(rv.symbol)
			n -= rv.value
		}
	}
	return b.String()
}

// FormatNumber renders a page number in the given scheme ("arabic" or
// "roman"). Ghost numbers are wrapped in brackets, marking pages whose
// number is inferred rather than printed.
func FormatNumber(n int, scheme string, ghost bool) string {
	var token string
	if scheme == "roman" {
		token = ToRoman(n)
	} else {
		token = strconv.Itoa(n)
	}
	if ghost {
		return "[" + token + "]"
	}
	return token
}

// NiceSession resolves a session display name, preferring the saved label,
// then the detected catalog id, then a compact form of the session uuid
// (first 8 characters, hyphens stripped, uppercased).
func NiceSession(sessionID, label, detectedID string) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	if d := strings.TrimSpace(detectedID); d != "" {
		return d
	}
	if sessionID == "" {
		return "—"
	}
	compact := strings.ReplaceAll(sessionID, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return strings.ToUpper(compact)
}
