package dedup

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumPattern      = regexp.MustCompile(`[^a-z0-9\s]+`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
	numberPrefixPattern  = regexp.MustCompile(`^\d+\s*-?\s*`)
	trailingQualityToken = regexp.MustCompile(`\s+(?:\d*hd|\d*sd|fhd|uhd|4k)$`)
	trailingRomanPattern = regexp.MustCompile(`\s+(x|ix|viii|vii|vi|v|iv|iii|ii|i)$`)
)

var romanToArabic = map[string]string{
	"i": "1", "ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9", "x": "10",
}

// spanishNumberWords covers uno..quince; catalogs from Spanish-language
// sources spell channel numbers out ("Canal Dos" / "Canal 2").
var spanishNumberWords = []struct {
	pattern *regexp.Regexp
	digit   string
}{
	{regexp.MustCompile(`\buno\b`), "1"},
	{regexp.MustCompile(`\bdos\b`), "2"},
	{regexp.MustCompile(`\btres\b`), "3"},
	{regexp.MustCompile(`\bcuatro\b`), "4"},
	{regexp.MustCompile(`\bcinco\b`), "5"},
	{regexp.MustCompile(`\bseis\b`), "6"},
	{regexp.MustCompile(`\bsiete\b`), "7"},
	{regexp.MustCompile(`\bocho\b`), "8"},
	{regexp.MustCompile(`\bnueve\b`), "9"},
	{regexp.MustCompile(`\bdiez\b`), "10"},
	{regexp.MustCompile(`\bonce\b`), "11"},
	{regexp.MustCompile(`\bdoce\b`), "12"},
	{regexp.MustCompile(`\btrece\b`), "13"},
	{regexp.MustCompile(`\bcatorce\b`), "14"},
	{regexp.MustCompile(`\bquince\b`), "15"},
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldDiacritics(input string) string {
	folded, _, err := transform.String(diacriticFolder, input)
	if err != nil {
		return input
	}
	return folded
}

// Normalize produces the comparison key for a channel name. Each step is
// idempotent on its own output: fold diacritics and lower-case, strip
// punctuation, strip a leading channel-number prefix, strip trailing
// quality tokens, convert a trailing roman numeral, convert spelled-out
// Spanish numbers.
func Normalize(name string) string {
	value := baseNormalize(name)
	value = numberPrefixPattern.ReplaceAllString(value, "")
	for {
		stripped := trailingQualityToken.ReplaceAllString(value, "")
		if stripped == value {
			break
		}
		value = stripped
	}
	value = convertTrailingRoman(value)
	value = convertSpanishNumbers(value)
	return strings.TrimSpace(value)
}

// NormalizeForQualityPatterns is used when both compared names carry a
// detectable quality pattern. The classified pattern occurrences are removed
// wherever they appear, but no generic trailing-token stripping happens, so
// digits that belong to the channel identity ("Fox Sports 2") survive.
func NormalizeForQualityPatterns(name string) string {
	value := baseNormalize(name)
	value = stripQualityPatterns(value)
	value = whitespacePattern.ReplaceAllString(value, " ")
	value = strings.TrimSpace(value)
	value = numberPrefixPattern.ReplaceAllString(value, "")
	value = convertTrailingRoman(value)
	value = convertSpanishNumbers(value)
	return strings.TrimSpace(value)
}

func baseNormalize(name string) string {
	value := strings.ToLower(foldDiacritics(strings.TrimSpace(name)))
	value = nonAlnumPattern.ReplaceAllString(value, " ")
	value = whitespacePattern.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func convertTrailingRoman(value string) string {
	return trailingRomanPattern.ReplaceAllStringFunc(value, func(match string) string {
		token := strings.TrimSpace(match)
		if digit, ok := romanToArabic[token]; ok {
			return " " + digit
		}
		return match
	})
}

func convertSpanishNumbers(value string) string {
	for _, word := range spanishNumberWords {
		value = word.pattern.ReplaceAllString(value, word.digit)
	}
	return value
}

// NormalizeURL lower-cases a stream URL and strips query-string and fragment
// noise so two otherwise-identical endpoints compare equal. Scheme, host and
// path semantics are preserved.
func NormalizeURL(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return value
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawFragment = ""
	normalized := parsed.String()
	return strings.TrimSuffix(normalized, "/")
}
