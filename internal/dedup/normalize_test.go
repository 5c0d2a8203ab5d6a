package dedup

import (
	"testing"
)

func TestNormalizeStripsPunctuationAndCase(t *testing.T) {
	got := Normalize("  C.N.N. Internacional!  ")
	if got != "cnn internacional" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestNormalizeFoldsDiacritics(t *testing.T) {
	if got := Normalize("Canal Ñandú"); got != "canal nandu" {
		t.Fatalf("expected folded diacritics, got %q", got)
	}
	if Normalize("Televisión") != Normalize("Television") {
		t.Fatalf("accented and plain forms must normalize equal")
	}
}

func TestNormalizeStripsNumericPrefix(t *testing.T) {
	cases := map[string]string{
		"105 - CNN":   "cnn",
		"105 CNN":     "cnn",
		"7- Discovery": "discovery",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeStripsTrailingQualityTokens(t *testing.T) {
	cases := map[string]string{
		"CNN Internacional HD": "cnn internacional",
		"Caracol TV SD":        "caracol tv",
		"ESPN 2HD":             "espn",
		"Discovery FHD":        "discovery",
		"Natgeo 4K":            "natgeo",
		"History UHD":          "history",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeStripsStackedQualityTokens(t *testing.T) {
	// Stripping repeats until fixpoint, so piled-up suffixes fall off too.
	if got := Normalize("TNT HD 4K"); got != "tnt" {
		t.Fatalf("expected stacked tokens stripped, got %q", got)
	}
}

func TestNormalizeKeepsIdentityDigits(t *testing.T) {
	if got := Normalize("ESPN 2 Latinoamerica"); got != "espn 2 latinoamerica" {
		t.Fatalf("identity digit must survive, got %q", got)
	}
}

func TestNormalizeConvertsTrailingRomanNumeral(t *testing.T) {
	cases := map[string]string{
		"Canal III": "canal 3",
		"TVE II":    "tve 2",
		"Fox IX":    "fox 9",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeConvertsSpanishNumberWords(t *testing.T) {
	if Normalize("Canal Dos") != Normalize("Canal 2") {
		t.Fatalf("spelled-out and digit channel numbers must normalize equal")
	}
	if got := Normalize("Canal Quince"); got != "canal 15" {
		t.Fatalf("unexpected conversion: %q", got)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"105 - CNN HD", "Canal Dos SD", "Fox Sports III 4K", "  Televisión Española  "}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q vs %q", input, once, twice)
		}
	}
}

func TestNormalizeForQualityPatternsKeepsIdentityDigits(t *testing.T) {
	first := NormalizeForQualityPatterns("Fox Sports 2 HD")
	second := NormalizeForQualityPatterns("Fox Sports 2 SD")
	if first != second {
		t.Fatalf("expected equal keys, got %q vs %q", first, second)
	}
	if first != "fox sports 2" {
		t.Fatalf("identity digit must survive pattern stripping, got %q", first)
	}
}

func TestNormalizeForQualityPatternsRemovesNumberedPatternWhole(t *testing.T) {
	if got := NormalizeForQualityPatterns("ESPN 7HD"); got != "espn" {
		t.Fatalf("numbered pattern digit is quality numbering, got %q", got)
	}
}

func TestNormalizeURLStripsQueryAndFragment(t *testing.T) {
	got := NormalizeURL("HTTP://Example.com/stream/abc?token=XYZ#live")
	if got != "http://example.com/stream/abc" {
		t.Fatalf("unexpected URL normalization: %q", got)
	}
}

func TestNormalizeURLTrimsTrailingSlash(t *testing.T) {
	if NormalizeURL("http://example.com/stream/") != NormalizeURL("http://example.com/stream") {
		t.Fatalf("trailing slash must not change the key")
	}
}

func TestNormalizeURLEmpty(t *testing.T) {
	if got := NormalizeURL("   "); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}
