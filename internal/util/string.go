package util

import "strings"

// TruncateRunes truncates a string to maxRunes characters (rune-based, not
// byte-based). Used to bound raw HTML before it enters a provider prompt.
func TruncateRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// DigitsOnly strips everything but ASCII digits. Phone numbers extracted from
// transcripts are standardized this way when confidently identified.
func DigitsOnly(s string) string {
	var builder strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
