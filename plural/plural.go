// Package plural resolves the CLDR plural categories applicable to a
// locale, for cardinal and ordinal forms.
//
// Category sets are derived from the plural rule data shipped with
// golang.org/x/text by probing the rules over a fixed operand sample.
// Results are returned in canonical CLDR order (zero, one, two, few,
// many, other) and are deterministic for a given locale within one
// resolver's lifetime.
package plural

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Categories in canonical CLDR order.
const (
	Zero  = "zero"
	One   = "one"
	Two   = "two"
	Few   = "few"
	Many  = "many"
	Other = "other"
)

var canonicalOrder = []plural.Form{
	plural.Zero, plural.One, plural.Two, plural.Few, plural.Many, plural.Other,
}

var formNames = map[plural.Form]string{
	plural.Zero:  Zero,
	plural.One:   One,
	plural.Two:   Two,
	plural.Few:   Few,
	plural.Many:  Many,
	plural.Other: Other,
}

// Known reports whether name is a valid CLDR plural category name.
func Known(name string) bool {
	for _, f := range canonicalOrder {
		if formNames[f] == name {
			return true
		}
	}
	return false
}

// Resolver resolves plural categories per locale. A resolver is scoped to
// one reconciliation run; its cache never outlives the run, so repeated
// runs (watch-style re-invocation) cannot observe stale locale data.
type Resolver struct {
	defaultTag language.Tag
	cache      map[cacheKey][]string
}

type cacheKey struct {
	tag     language.Tag
	ordinal bool
}

// DefaultLocale is used when a requested locale cannot be parsed.
const DefaultLocale = "en"

// NewResolver returns a resolver that falls back to defaultLocale for
// malformed or unsupported locale identifiers. An empty or unparsable
// defaultLocale falls back to DefaultLocale.
func NewResolver(defaultLocale string) *Resolver {
	tag, err := language.Parse(defaultLocale)
	if err != nil || defaultLocale == "" {
		tag = language.MustParse(DefaultLocale)
	}
	return &Resolver{
		defaultTag: tag,
		cache:      make(map[cacheKey][]string),
	}
}

// Categories returns the ordered plural category names for a locale.
// Malformed locale identifiers resolve using the default locale instead
// of failing; the result is always non-empty.
func (r *Resolver) Categories(locale string, ordinal bool) []string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = r.defaultTag
	}

	key := cacheKey{tag: tag, ordinal: ordinal}
	if cats, ok := r.cache[key]; ok {
		return cats
	}

	rules := plural.Cardinal
	if ordinal {
		rules = plural.Ordinal
	}
	cats := enumerate(rules, tag)
	if len(cats) == 0 {
		cats = []string{Other}
	}
	r.cache[key] = cats
	return cats
}

// Valid reports whether a category name applies to the locale.
func (r *Resolver) Valid(locale string, ordinal bool, category string) bool {
	for _, c := range r.Categories(locale, ordinal) {
		if c == category {
			return true
		}
	}
	return false
}

// enumerate probes the rule set over integer and fractional operands and
// collects the distinct forms in canonical order. The integer range covers
// the period-100 rules used by Slavic and Arabic plurals; the fractional
// probes cover locales whose "one"/"few" classes depend on visible
// fraction digits.
func enumerate(rules *plural.Rules, tag language.Tag) []string {
	seen := make(map[plural.Form]bool)

	for i := 0; i <= 299; i++ {
		seen[rules.MatchPlural(tag, i, 0, 0, 0, 0)] = true
	}
	// Large round numbers (million, billion) trigger "many" in some
	// locales, e.g. Spanish cardinal.
	for _, i := range []int{1000, 10000, 1000000, 2000000} {
		seen[rules.MatchPlural(tag, i, 0, 0, 0, 0)] = true
	}
	// Fractional operands: one visible fraction digit, with and without
	// a zero integer part.
	for i := 0; i <= 2; i++ {
		for f := 0; f <= 9; f++ {
			seen[rules.MatchPlural(tag, i, 1, 1, f, f)] = true
			seen[rules.MatchPlural(tag, i, 2, 2, f*10+f, f*10+f)] = true
		}
	}

	var out []string
	for _, form := range canonicalOrder {
		if seen[form] {
			out = append(out, formNames[form])
		}
	}
	return out
}
