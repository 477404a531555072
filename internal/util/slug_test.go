package util

import (
	"strings"
	"testing"
)

func TestSlugifyStripsAccentsAndPunctuation(t *testing.T) {
	got := Slugify("Lançamento Praia Brava!")
	if got != "lancamento-praia-brava" {
		t.Fatalf("unexpected slug: %q", got)
	}
}

func TestSlugifyCollapsesAndTrimsHyphens(t *testing.T) {
	got := Slugify("  --Cobertura — à Beira-Mar--  ")
	if strings.Contains(got, "--") {
		t.Fatalf("slug contains repeated hyphens: %q", got)
	}
	if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
		t.Fatalf("slug has leading/trailing hyphen: %q", got)
	}
}

func TestSlugifyEmptyInput(t *testing.T) {
	if got := Slugify("!!!"); got != "" {
		t.Fatalf("expected empty slug, got %q", got)
	}
}

func TestUniqueSlugDisambiguates(t *testing.T) {
	a := UniqueSlug("Lançamento Praia Brava!")
	b := UniqueSlug("Lançamento Praia Brava!")
	if a == b {
		t.Fatalf("expected distinct slugs, both were %q", a)
	}
	if !strings.HasPrefix(a, "lancamento-praia-brava-") {
		t.Fatalf("unexpected slug prefix: %q", a)
	}
}

func TestUniqueSlugNeverEmpty(t *testing.T) {
	if got := UniqueSlug("???"); got == "" {
		t.Fatal("expected non-empty slug for unslugifiable title")
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly("+55 (47) 99999-8888"); got != "5547999998888" {
		t.Fatalf("unexpected digits: %q", got)
	}
}
