// Package reconcile compares extracted translation keys against on-disk
// translation trees.
//
// For every secondary locale it expands plural-bearing keys into the
// locale's own plural categories, resolves each lookup through the
// namespace/fallback-namespace chain, and aggregates translated/missing
// counts into a StatusReport. The same expansion drives the sync path,
// which computes non-destructive file writes: missing keys are inserted,
// empty values may be filled from extracted defaults, and existing
// translations are never overwritten.
package reconcile

import (
	"strings"

	"github.com/localekit/keysync/config"
	"github.com/localekit/keysync/extract"
	"github.com/localekit/keysync/plural"
	"github.com/localekit/keysync/store"
	"github.com/localekit/keysync/tree"
)

// KeyDetail is the outcome for one fully-expanded lookup key.
type KeyDetail struct {
	Key          string
	IsTranslated bool
}

// NamespaceStatus aggregates one locale × namespace.
type NamespaceStatus struct {
	TotalKeys      int
	TranslatedKeys int
	KeyDetails     []KeyDetail
}

// LocaleStatus aggregates one locale across namespaces.
type LocaleStatus struct {
	TotalKeys       int
	TotalTranslated int
	Namespaces      map[string]*NamespaceStatus
}

// StatusReport is the full reconciliation result for one run. It is
// rebuilt from scratch on every invocation and read-only afterward.
type StatusReport struct {
	// TotalBaseKeys counts deduplicated extracted keys before per-locale
	// plural expansion, ignored namespaces excluded.
	TotalBaseKeys int
	// NamespaceOrder preserves first-seen namespace order for output.
	NamespaceOrder []string
	// KeysByNamespace counts base keys per namespace.
	KeysByNamespace map[string]int
	// Primary is the primary language; by definition 100% translated and
	// absent from Languages.
	Primary string
	// LocaleOrder preserves config order of the secondary locales.
	LocaleOrder []string
	// Languages maps each secondary locale to its aggregate status.
	Languages map[string]*LocaleStatus
}

// HasMissing reports whether any locale has untranslated keys. This
// drives the caller's success/failure signal; the status path itself
// never writes.
func (r *StatusReport) HasMissing() bool {
	for _, ls := range r.Languages {
		if ls.TotalTranslated < ls.TotalKeys {
			return true
		}
	}
	return false
}

// Engine runs reconciliation for one invocation. The plural resolver and
// store are scoped to the engine, so repeated runs never observe stale
// locale data or cached trees from a previous pass.
type Engine struct {
	cfg     *config.Config
	store   *store.Store
	plurals *plural.Resolver
}

// New returns an engine over the given store.
func New(cfg *config.Config, st *store.Store) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   st,
		plurals: plural.NewResolver(cfg.Extract.PrimaryLanguage),
	}
}

// Status reconciles the extraction set against the translation files of
// every secondary locale. Running it twice on unchanged inputs yields an
// identical report.
func (e *Engine) Status(set *extract.Set) *StatusReport {
	report := &StatusReport{
		TotalBaseKeys:   set.Len(),
		NamespaceOrder:  set.Namespaces(),
		KeysByNamespace: make(map[string]int),
		Primary:         e.cfg.Extract.PrimaryLanguage,
		LocaleOrder:     e.cfg.SecondaryLocales(),
		Languages:       make(map[string]*LocaleStatus),
	}
	for _, ns := range report.NamespaceOrder {
		report.KeysByNamespace[ns] = len(set.ByNamespace(ns))
	}

	for _, locale := range report.LocaleOrder {
		ls := &LocaleStatus{Namespaces: make(map[string]*NamespaceStatus)}

		for _, ns := range report.NamespaceOrder {
			sources := e.store.Sources(locale, ns)
			nsStat := &NamespaceStatus{}

			for _, k := range set.ByNamespace(ns) {
				for _, lookupKey := range e.Expand(k, locale) {
					translated := lookupChain(sources, lookupKey, e.cfg.KeySeparator())
					nsStat.TotalKeys++
					if translated {
						nsStat.TranslatedKeys++
					}
					nsStat.KeyDetails = append(nsStat.KeyDetails, KeyDetail{
						Key:          lookupKey,
						IsTranslated: translated,
					})
				}
			}

			ls.Namespaces[ns] = nsStat
			ls.TotalKeys += nsStat.TotalKeys
			ls.TotalTranslated += nsStat.TranslatedKeys
		}

		report.Languages[locale] = ls
	}

	return report
}

// Expand returns the lookup keys a single extracted key contributes for
// one target locale:
//
//   - non-plural keys map to themselves;
//   - keys written with a literal category suffix count only when that
//     category exists for the target locale, and are otherwise excluded
//     entirely (not counted missing);
//   - base plural keys synthesize one key per locale-valid category,
//     using the locale's own category set rather than the source
//     language's.
func (e *Engine) Expand(k extract.Key, locale string) []string {
	if !k.HasCount {
		return []string{k.Key}
	}

	sep := e.cfg.Extract.PluralSeparator

	if k.IsExpandedPlural {
		_, category, ordinal, ok := extract.SplitPluralSuffix(k.Key, sep)
		if !ok {
			return []string{k.Key}
		}
		if !e.plurals.Valid(locale, ordinal, category) {
			return nil
		}
		return []string{k.Key}
	}

	cats := e.plurals.Categories(locale, k.IsOrdinal)
	out := make([]string, 0, len(cats))
	for _, cat := range cats {
		out = append(out, e.pluralKey(k.Key, cat, k.IsOrdinal))
	}
	return out
}

func (e *Engine) pluralKey(base, category string, ordinal bool) string {
	sep := e.cfg.Extract.PluralSeparator
	var b strings.Builder
	b.WriteString(base)
	b.WriteString(sep)
	if ordinal {
		b.WriteString(extract.OrdinalSegment)
		b.WriteString(sep)
	}
	b.WriteString(category)
	return b.String()
}

// lookupChain tries each source in order and short-circuits on the first
// non-empty string value.
func lookupChain(sources []*tree.Tree, key, sep string) bool {
	for _, t := range sources {
		if v, ok := t.Lookup(key, sep); ok && v != "" {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Sync path
// ---------------------------------------------------------------------------

// SyncIntents computes the file writes that bring the on-disk state in
// line with the extraction set, for every configured locale including the
// primary.
//
// Per (locale, namespace) the expected key set is the same per-locale
// plural expansion Status uses. Missing keys are inserted — with the
// extracted default value for the primary language, empty otherwise —
// and existing empty primary values are filled in. Keys absent from
// extraction are removed only when remove_unused is configured; the
// default keeps them, so repeated syncs never destroy human-entered
// translations. Existing key order is preserved and new keys append.
func (e *Engine) SyncIntents(set *extract.Set) []store.WriteIntent {
	if e.cfg.MergeNamespaces() {
		return e.mergedIntents(set)
	}

	var intents []store.WriteIntent
	for _, locale := range e.cfg.Locales {
		for _, ns := range set.Namespaces() {
			existing := e.store.Load(locale, ns).Clone()
			e.applyExpected(existing, nil, set.ByNamespace(ns), locale)
			intents = append(intents, store.WriteIntent{
				Path: e.store.PathFor(locale, ns),
				Tree: existing,
			})
		}
	}
	return intents
}

// mergedIntents emits one intent per locale with each namespace as a
// sub-tree of the shared file. Root-level values from legacy flat layouts
// move into their namespace sub-tree; unrecognized root keys are left
// untouched.
func (e *Engine) mergedIntents(set *extract.Set) []store.WriteIntent {
	var intents []store.WriteIntent
	for _, locale := range e.cfg.Locales {
		root := e.store.LoadLocale(locale).Clone()
		for _, ns := range set.Namespaces() {
			sub, ok := root.Subtree(ns)
			if !ok {
				sub = tree.New()
			}
			e.applyExpected(sub, root, set.ByNamespace(ns), locale)
			if !ok && sub.Len() > 0 {
				root.SetSubtree(ns, sub)
			}
		}
		intents = append(intents, store.WriteIntent{
			Path: e.store.PathFor(locale, ""),
			Tree: root,
		})
	}
	return intents
}

// applyExpected mutates one namespace-scoped tree toward the expected
// key set for a locale. legacy, when non-nil, is the merge-mode root tree
// consulted for values that predate the namespace wrapper; such values
// migrate into the sub-tree so later loads keep finding them.
func (e *Engine) applyExpected(t, legacy *tree.Tree, keys []extract.Key, locale string) {
	sep := e.cfg.KeySeparator()
	primary := locale == e.cfg.Extract.PrimaryLanguage

	expected := make(map[string]bool)
	for _, k := range keys {
		for _, lookupKey := range e.Expand(k, locale) {
			expected[lookupKey] = true

			want := ""
			if primary {
				want = k.DefaultValue
				if want == "" {
					want = e.cfg.Extract.DefaultValue
				}
			}
			if v, ok := t.Lookup(lookupKey, sep); ok {
				// Fill empty values from extracted defaults; never
				// overwrite a non-empty translation.
				if v == "" && want != "" {
					t.Set(lookupKey, sep, want)
				}
				continue
			}
			if t.Has(lookupKey, sep) {
				// Occupied by a subtree or non-string value; leave it.
				continue
			}
			if legacy != nil {
				if v, ok := legacy.Lookup(lookupKey, sep); ok && v != "" {
					t.Set(lookupKey, sep, v)
					// The root copy is unreachable once the sub-tree
					// exists; keeping it would duplicate the value.
					legacy.Delete(lookupKey, sep)
					continue
				}
			}
			t.Set(lookupKey, sep, want)
		}
	}

	if e.cfg.Extract.RemoveUnused {
		for _, path := range t.LeafPaths(sep) {
			if !expected[path] {
				t.Delete(path, sep)
			}
		}
	}
}
