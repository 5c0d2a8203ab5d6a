package dedup

import (
	"regexp"
	"strconv"
	"strings"
)

// PatternType identifies the lexical quality marker found in a channel name.
type PatternType string

const (
	PatternNumberedHD   PatternType = "numbered_hd"
	PatternUnderscoreHD PatternType = "_hd"
	PatternHDWord       PatternType = "hd_word"
	PatternUHD          PatternType = "uhd"
	PatternFHD          PatternType = "fhd"
	Pattern4K           PatternType = "4k"
	PatternNumberedSD   PatternType = "numbered_sd"
	PatternSDVariant    PatternType = "sd_variant"
	PatternNone         PatternType = "none"
)

var (
	highQualityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`_hd\b`),
		regexp.MustCompile(`\bhd\b`),
		regexp.MustCompile(`\b\d+hd\b`),
		regexp.MustCompile(`\buhd\b`),
		regexp.MustCompile(`\bfhd\b`),
		regexp.MustCompile(`\b4k\b`),
	}
	lowQualityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bsd\b`),
		regexp.MustCompile(`_sd\b`),
		regexp.MustCompile(`\bsd_\w+\b`),
		regexp.MustCompile(`\b\d+sd\b`),
	}

	numberedHDPattern   = regexp.MustCompile(`\b(\d+)hd\b`)
	underscoreHDPattern = regexp.MustCompile(`_hd\b`)
	hdWordPattern       = regexp.MustCompile(`\bhd\b`)
	uhdPattern          = regexp.MustCompile(`\buhd\b`)
	fhdPattern          = regexp.MustCompile(`\bfhd\b`)
	fourKPattern        = regexp.MustCompile(`\b4k\b`)
	numberedSDPattern   = regexp.MustCompile(`\b(\d+)sd\b`)
	sdVariantPattern    = regexp.MustCompile(`\bsd_(\w+)\b`)
	sdWordPattern       = regexp.MustCompile(`\bsd\b|_sd\b`)
)

// patternPriority is the single source of truth for "is this pattern better
// than that one". HD-family patterns score >= 75, SD-family patterns score in
// (0, 25], none scores 0. Exposed as data so tie-break rules stay consistent
// across resolver instances.
var patternPriority = map[PatternType]int{
	Pattern4K:           100,
	PatternUHD:          95,
	PatternFHD:          90,
	PatternNumberedHD:   85,
	PatternUnderscoreHD: 80,
	PatternHDWord:       75,
	PatternNumberedSD:   25,
	PatternSDVariant:    20,
	PatternNone:         0,
}

// sdVariantPriority ranks SD sub-variant suffixes; more specific variants
// rank higher. Unknown variants fall back to a low non-zero rank.
var sdVariantPriority = map[string]int{
	"in":     30,
	"out":    25,
	"local":  20,
	"backup": 10,
}

const sdVariantDefaultPriority = 5

// PatternPriority returns the static rank of a pattern type.
func PatternPriority(pattern PatternType) int {
	return patternPriority[pattern]
}

// HasQualityPattern reports whether the name carries any lexical quality marker.
func HasQualityPattern(name string) bool {
	return IsHighQuality(name) || IsLowQuality(name)
}

// IsHighQuality reports whether the name matches an HD-family pattern.
func IsHighQuality(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range highQualityPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// IsLowQuality reports whether the name matches an SD-family pattern.
func IsLowQuality(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range lowQualityPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// PatternTypeOf classifies the quality marker in a channel name. Numbered and
// resolution-specific patterns are checked before the generic word patterns so
// "ESPN 7HD" classifies as numbered_hd rather than hd_word.
func PatternTypeOf(name string) PatternType {
	lower := strings.ToLower(name)
	switch {
	case numberedHDPattern.MatchString(lower):
		return PatternNumberedHD
	case fourKPattern.MatchString(lower):
		return Pattern4K
	case uhdPattern.MatchString(lower):
		return PatternUHD
	case fhdPattern.MatchString(lower):
		return PatternFHD
	case underscoreHDPattern.MatchString(lower):
		return PatternUnderscoreHD
	case hdWordPattern.MatchString(lower):
		return PatternHDWord
	case numberedSDPattern.MatchString(lower):
		return PatternNumberedSD
	case sdVariantPattern.MatchString(lower), sdWordPattern.MatchString(lower):
		return PatternSDVariant
	default:
		return PatternNone
	}
}

// ExtractHDNumber pulls the integer adjacent to an HD token ("7HD" -> 7).
// Returns 0 when no numbered HD pattern is present.
func ExtractHDNumber(name string) int {
	match := numberedHDPattern.FindStringSubmatch(strings.ToLower(name))
	if len(match) < 2 {
		return 0
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return value
}

// ExtractSDNumber pulls the integer adjacent to an SD token ("3SD" -> 3).
func ExtractSDNumber(name string) int {
	match := numberedSDPattern.FindStringSubmatch(strings.ToLower(name))
	if len(match) < 2 {
		return 0
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return value
}

// ExtractSDVariant extracts the suffix of an sd_ variant token
// ("Canal SD_IN" -> "in"). Empty when no variant suffix is present.
func ExtractSDVariant(name string) string {
	match := sdVariantPattern.FindStringSubmatch(strings.ToLower(name))
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// SDVariantPriority ranks an extracted SD variant suffix.
func SDVariantPriority(variant string) int {
	if variant == "" {
		return 0
	}
	if rank, ok := sdVariantPriority[strings.ToLower(variant)]; ok {
		return rank
	}
	return sdVariantDefaultPriority
}

// stripQualityPatterns removes every classified quality marker from an
// already lower-cased name. Numbered patterns are removed whole: their digit
// counts as quality numbering, not channel identity.
func stripQualityPatterns(lower string) string {
	value := numberedHDPattern.ReplaceAllString(lower, " ")
	value = numberedSDPattern.ReplaceAllString(value, " ")
	value = sdVariantPattern.ReplaceAllString(value, " ")
	value = fourKPattern.ReplaceAllString(value, " ")
	value = uhdPattern.ReplaceAllString(value, " ")
	value = fhdPattern.ReplaceAllString(value, " ")
	value = underscoreHDPattern.ReplaceAllString(value, " ")
	value = hdWordPattern.ReplaceAllString(value, " ")
	value = sdWordPattern.ReplaceAllString(value, " ")
	return value
}
