package util

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts arbitrary title text to a URL-safe lowercase hyphenated
// string: accents stripped, punctuation dropped, repeated hyphens collapsed,
// no leading or trailing hyphens.
func Slugify(title string) string {
	stripped, _, err := transform.String(accentStripper, title)
	if err != nil {
		stripped = title
	}

	lower := strings.ToLower(stripped)

	var builder strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			builder.WriteRune('-')
		}
	}

	slug := builder.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return strings.Trim(slug, "-")
}

// UniqueSlug appends a short random disambiguator so two pages generated from
// the same title never collide.
func UniqueSlug(title string) string {
	slug := Slugify(title)
	suffix := uuid.NewString()[:8]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
