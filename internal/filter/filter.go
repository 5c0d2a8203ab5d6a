// Package filter removes unwanted channels from a catalog by content
// category. Matching is keyword and domain based; a channel is judged on its
// name, category label and stream host, never on stream content.
package filter

import (
	"net/url"
	"regexp"
	"strings"
)

// Category selects one built-in filter family.
type Category string

const (
	CategoryReligious Category = "religious"
	CategoryPolitical Category = "political"
	CategoryDomains   Category = "domains"
)

// Decision explains why a channel was blocked. MatchedTerms is capped to the
// terms that actually contributed to the verdict.
type Decision struct {
	Blocked      bool     `json:"blocked"`
	Category     Category `json:"category,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
	MatchedTerms []string `json:"matchedTerms,omitempty"`
}

// Subject is the minimal channel view the filter needs.
type Subject struct {
	Name      string
	Category  string
	StreamURL string
}

// Filter evaluates channels against a fixed set of enabled categories.
// A Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	religious bool
	political bool
	domains   bool
}

// ParseCategories maps raw comma-separated input to known categories.
// Unknown entries are dropped.
func ParseCategories(raw string) []Category {
	var out []Category
	for _, part := range strings.Split(raw, ",") {
		switch Category(strings.ToLower(strings.TrimSpace(part))) {
		case CategoryReligious:
			out = append(out, CategoryReligious)
		case CategoryPolitical:
			out = append(out, CategoryPolitical)
		case CategoryDomains:
			out = append(out, CategoryDomains)
		}
	}
	return out
}

// New builds a filter for the given categories. An empty category list
// yields a filter that blocks nothing.
func New(categories []Category) *Filter {
	f := &Filter{}
	for _, category := range categories {
		switch category {
		case CategoryReligious:
			f.religious = true
		case CategoryPolitical:
			f.political = true
		case CategoryDomains:
			f.domains = true
		}
	}
	return f
}

// Enabled reports whether any category is active.
func (f *Filter) Enabled() bool {
	return f.religious || f.political || f.domains
}

// Evaluate runs the enabled categories in order of precision: domain
// blocklist, then religious scoring, then political keywords. The first
// category that blocks wins.
func (f *Filter) Evaluate(subject Subject) Decision {
	host := hostOf(subject.StreamURL)

	if f.domains {
		if decision := evaluateBlockedDomain(host); decision.Blocked {
			return decision
		}
		if decision := evaluateBlockedProvider(subject); decision.Blocked {
			return decision
		}
	}
	if f.religious {
		if decision := evaluateReligious(subject, host); decision.Blocked {
			return decision
		}
	}
	if f.political {
		if decision := evaluatePolitical(subject); decision.Blocked {
			return decision
		}
	}
	return Decision{}
}

// Confidence weights mirror the precision of each signal class: a known
// domain term is near-certain, a high-precision keyword slightly less so,
// a context keyword is only a nudge.
const (
	domainTermWeight    = 0.9
	highPrecisionWeight = 0.8
	contextWeight       = 0.3
	religiousThreshold  = 0.5
)

func evaluateReligious(subject Subject, host string) Decision {
	text := normalizeText(subject.Name + " " + subject.Category)
	tokens := tokenSet(text)

	var matched []string
	confidence := 0.0

	primary := false
	for _, keyword := range religiousHighPrecisionKeywords {
		if matchKeyword(keyword, text, tokens) {
			matched = append(matched, keyword)
			confidence += highPrecisionWeight
			primary = true
		}
	}
	for _, term := range religiousDomainTerms {
		if host != "" && strings.Contains(host, term) {
			matched = append(matched, term)
			confidence += domainTermWeight
			primary = true
		}
	}

	// Context words need a primary signal; "Cafe TV" stays, "Fe TV" from a
	// gospel host goes.
	if primary {
		for _, keyword := range religiousContextKeywords {
			if matchKeyword(keyword, text, tokens) {
				matched = append(matched, keyword)
				confidence += contextWeight
			}
		}
	}

	if confidence > 1 {
		confidence = 1
	}
	if confidence < religiousThreshold {
		return Decision{}
	}
	return Decision{Blocked: true, Category: CategoryReligious, Confidence: confidence, MatchedTerms: matched}
}

func evaluatePolitical(subject Subject) Decision {
	text := normalizeText(subject.Name + " " + subject.Category)
	tokens := tokenSet(text)
	urlLower := strings.ToLower(subject.StreamURL)

	for _, keyword := range politicalKeywords {
		if matchKeyword(keyword, text, tokens) || strings.Contains(urlLower, keyword) {
			return Decision{Blocked: true, Category: CategoryPolitical, Confidence: 1, MatchedTerms: []string{keyword}}
		}
	}
	return Decision{}
}

func evaluateBlockedDomain(host string) Decision {
	if host == "" {
		return Decision{}
	}
	for _, term := range blockedDomainTerms {
		if strings.HasPrefix(term, ".") {
			if strings.HasSuffix(host, term) {
				return Decision{Blocked: true, Category: CategoryDomains, Confidence: 1, MatchedTerms: []string{term}}
			}
			continue
		}
		if strings.Contains(host, term) {
			return Decision{Blocked: true, Category: CategoryDomains, Confidence: 1, MatchedTerms: []string{term}}
		}
	}
	return Decision{}
}

func evaluateBlockedProvider(subject Subject) Decision {
	name := strings.ToLower(subject.Name)
	urlLower := strings.ToLower(subject.StreamURL)
	for _, term := range blockedProviderTerms {
		if strings.Contains(name, term) || strings.Contains(urlLower, term) {
			return Decision{Blocked: true, Category: CategoryDomains, Confidence: 1, MatchedTerms: []string{term}}
		}
	}
	return Decision{}
}

var textCleanPattern = regexp.MustCompile(`[^a-z0-9\s]+`)

func normalizeText(value string) string {
	value = strings.ToLower(value)
	value = textCleanPattern.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func tokenSet(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(text) {
		tokens[token] = struct{}{}
	}
	return tokens
}

// matchKeyword matches single words against whole tokens and multi-word
// keywords as substrings, so "dios" never fires inside "estudios".
func matchKeyword(keyword, text string, tokens map[string]struct{}) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	_, ok := tokens[keyword]
	return ok
}

// hostOf extracts the lower-cased host of a stream URL, tolerating inputs
// without a scheme and stripping a port when present.
func hostOf(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
