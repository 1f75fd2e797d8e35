// Package extract builds the canonical model of translatable keys found
// in application source.
//
// Raw call-site candidates come from a scanner collaborator; this package
// normalizes them: namespace resolution (explicit field, "ns:key" prefix,
// or default namespace), plural-suffix classification, deduplication, and
// namespace grouping. The resulting Set is immutable for the rest of the
// run.
package extract

import (
	"fmt"
	"strings"

	"github.com/localekit/keysync/plural"
)

// OrdinalSegment is the reserved key segment marking ordinal plural keys,
// e.g. "item_ordinal_one".
const OrdinalSegment = "ordinal"

// RawKey is a single call-site candidate as reported by the scanner.
type RawKey struct {
	Key          string
	Namespace    string
	HasCount     bool
	IsOrdinal    bool
	DefaultValue string
}

// Key is a normalized, deduplicated translatable key.
//
// For plural keys written with a literal category suffix in source
// (e.g. "item_one"), IsExpandedPlural is true and Key keeps the suffix;
// such keys represent exactly one plural category. Base plural keys carry
// no suffix and are expanded per target locale at reconciliation time.
type Key struct {
	Key              string
	Namespace        string
	HasCount         bool
	IsOrdinal        bool
	IsExpandedPlural bool
	DefaultValue     string
}

// Options control candidate normalization.
type Options struct {
	// NSSeparator splits an inline namespace prefix from the key ("ns:key").
	NSSeparator string
	// PluralSeparator joins a base key and a plural category ("item_one").
	PluralSeparator string
	// DefaultNamespace receives keys without a namespace. Empty means the
	// default namespace is disabled: candidates without an explicit
	// namespace are skipped.
	DefaultNamespace string
	// IgnoreNamespaces are dropped before any counting.
	IgnoreNamespaces []string
}

// Set is the immutable extraction result: deduplicated keys in insertion
// order, grouped by namespace.
type Set struct {
	keys       []Key
	namespaces []string         // insertion order
	byNS       map[string][]int // namespace -> indices into keys
}

// ScanError wraps a failure from the scanner collaborator. Scan failures
// are fatal: partial extraction would silently report keys as unused.
type ScanError struct {
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scanning source: %v", e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Source yields the raw key candidates for one invocation.
type Source interface {
	Scan() ([]RawKey, error)
}

// FromSource scans the source and builds the extraction set. A scanner
// failure is returned as *ScanError and aborts the run.
func FromSource(src Source, opts Options) (*Set, error) {
	raw, err := src.Scan()
	if err != nil {
		return nil, &ScanError{Err: err}
	}
	return Build(raw, opts), nil
}

// Build normalizes and deduplicates raw candidates into a Set.
//
// Duplicate (namespace, key) pairs merge: plural and ordinal flags are
// sticky, the first non-empty default value wins. Candidates in ignored
// namespaces never enter the set, so they cannot contribute to totals.
func Build(raw []RawKey, opts Options) *Set {
	ignored := make(map[string]bool, len(opts.IgnoreNamespaces))
	for _, ns := range opts.IgnoreNamespaces {
		ignored[ns] = true
	}

	s := &Set{byNS: make(map[string][]int)}
	index := make(map[string]int)

	for _, r := range raw {
		k, ok := normalize(r, opts)
		if !ok || ignored[k.Namespace] {
			continue
		}

		id := k.Namespace + "\x00" + k.Key
		if i, dup := index[id]; dup {
			merged := &s.keys[i]
			merged.HasCount = merged.HasCount || k.HasCount
			merged.IsOrdinal = merged.IsOrdinal || k.IsOrdinal
			if merged.DefaultValue == "" {
				merged.DefaultValue = k.DefaultValue
			}
			continue
		}

		index[id] = len(s.keys)
		if _, seen := s.byNS[k.Namespace]; !seen {
			s.namespaces = append(s.namespaces, k.Namespace)
		}
		s.byNS[k.Namespace] = append(s.byNS[k.Namespace], len(s.keys))
		s.keys = append(s.keys, k)
	}

	return s
}

// normalize resolves the namespace and classifies the plural shape of one
// candidate. ok is false when the candidate has no usable namespace or no
// key at all.
func normalize(r RawKey, opts Options) (Key, bool) {
	key := r.Key
	ns := r.Namespace

	if ns == "" && opts.NSSeparator != "" {
		if i := strings.Index(key, opts.NSSeparator); i > 0 {
			ns = key[:i]
			key = key[i+len(opts.NSSeparator):]
		}
	}
	if ns == "" {
		if opts.DefaultNamespace == "" {
			return Key{}, false
		}
		ns = opts.DefaultNamespace
	}
	if key == "" {
		return Key{}, false
	}

	k := Key{
		Key:          key,
		Namespace:    ns,
		HasCount:     r.HasCount,
		IsOrdinal:    r.IsOrdinal,
		DefaultValue: r.DefaultValue,
	}

	if _, _, ordinal, ok := SplitPluralSuffix(key, opts.PluralSeparator); ok {
		k.HasCount = true
		k.IsExpandedPlural = true
		k.IsOrdinal = k.IsOrdinal || ordinal
	}

	return k, true
}

// SplitPluralSuffix splits a key already written in expanded plural form.
// A key matches when it ends in separator+category for a known CLDR
// category; a reserved "ordinal" segment immediately before the category
// marks the key ordinal ("item_ordinal_few"). ok is false for keys
// without a literal category suffix.
func SplitPluralSuffix(key, sep string) (base, category string, ordinal bool, ok bool) {
	if sep == "" {
		return "", "", false, false
	}
	i := strings.LastIndex(key, sep)
	if i <= 0 {
		return "", "", false, false
	}
	category = key[i+len(sep):]
	if !plural.Known(category) {
		return "", "", false, false
	}
	base = key[:i]

	if j := strings.LastIndex(base, sep); j > 0 && base[j+len(sep):] == OrdinalSegment {
		return base[:j], category, true, true
	}
	return base, category, false, true
}

// Keys returns all keys in insertion order. The slice is shared; callers
// must not mutate it.
func (s *Set) Keys() []Key {
	return s.keys
}

// Len returns the number of deduplicated keys.
func (s *Set) Len() int {
	return len(s.keys)
}

// Namespaces returns namespace names in first-seen order.
func (s *Set) Namespaces() []string {
	out := make([]string, len(s.namespaces))
	copy(out, s.namespaces)
	return out
}

// ByNamespace returns the keys of one namespace in insertion order.
func (s *Set) ByNamespace(ns string) []Key {
	idx := s.byNS[ns]
	out := make([]Key, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.keys[i])
	}
	return out
}

// HasNamespace reports whether the namespace produced any keys.
func (s *Set) HasNamespace(ns string) bool {
	_, ok := s.byNS[ns]
	return ok
}
