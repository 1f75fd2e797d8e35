// Package config — .keysync.yaml configuration file support.
//
// The config file is the sole source of truth for locales and extraction
// settings. Locales may be omitted, in which case they are auto-detected
// from existing resource files under the output path.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/localekit/keysync/extract"
)

// FileName is the default config file name.
const FileName = ".keysync.yaml"

// DefaultNS is the namespace used for keys without an explicit one.
const DefaultNS = "translation"

// DefaultOutput is the resource path template used when extract.output
// is not set.
const DefaultOutput = "locales/{{language}}/{{namespace}}.json"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .keysync.yaml structure.
type Config struct {
	// Locales is the ordered list of locale identifiers. The first one is
	// the primary language unless overridden.
	Locales []string `yaml:"locales,omitempty"`
	// Extract holds key extraction and reconciliation settings.
	Extract Extract `yaml:"extract"`
}

// Extract mirrors the extract section of .keysync.yaml.
//
// Pointer fields distinguish "omitted" (default applies) from
// "explicitly empty" (feature disabled): key_separator: "" switches to
// flat keys, default_ns: "" disables the default namespace.
type Extract struct {
	// Input lists directories scanned for source files (default ["src"]).
	Input []string `yaml:"input,omitempty"`
	// Output is the resource path template with {{language}} and
	// {{namespace}} placeholders, relative to the project root.
	Output string `yaml:"output,omitempty"`
	// PrimaryLanguage is the source-of-truth locale (default: first locale).
	PrimaryLanguage string `yaml:"primary_language,omitempty"`
	// SecondaryLanguages defaults to all locales except the primary.
	SecondaryLanguages []string `yaml:"secondary_languages,omitempty"`
	// KeySeparator splits nested key paths (default "."; "" = flat keys).
	KeySeparator *string `yaml:"key_separator,omitempty"`
	// PluralSeparator joins base keys and plural categories (default "_").
	PluralSeparator string `yaml:"plural_separator,omitempty"`
	// NSSeparator splits inline namespace prefixes (default ":").
	NSSeparator string `yaml:"ns_separator,omitempty"`
	// DefaultNS receives keys without a namespace (default "translation";
	// "" = disabled, such keys are skipped).
	DefaultNS *string `yaml:"default_ns,omitempty"`
	// MergeNamespaces stores all namespaces of a locale in one file.
	MergeNamespaces bool `yaml:"merge_namespaces,omitempty"`
	// FallbackNS is consulted when a key misses in its own namespace.
	FallbackNS string `yaml:"fallback_ns,omitempty"`
	// IgnoreNamespaces are excluded from all counting and output.
	IgnoreNamespaces []string `yaml:"ignore_namespaces,omitempty"`
	// RemoveUnused deletes keys no longer found in source during sync.
	// Off by default: sync never destroys existing translations.
	RemoveUnused bool `yaml:"remove_unused,omitempty"`
	// DefaultValue seeds primary-language keys whose call site carries no
	// default of its own.
	DefaultValue string `yaml:"default_value,omitempty"`
	// Indent is the JSON indent width for written files (default 2).
	Indent int `yaml:"indent,omitempty"`
}

// ConfigError is a fatal configuration problem, reported before any
// extraction runs.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates the config file at path. If path is empty,
// FileName under rootDir is used. A missing file yields a default config;
// locales are then auto-detected from the output directory.
func Load(rootDir, path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(rootDir, FileName)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.applyDefaults()

	if len(cfg.Locales) == 0 {
		cfg.Locales = DetectLocales(rootDir, cfg.Extract.Output)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Extract.Input) == 0 {
		c.Extract.Input = []string{"src"}
	}
	if c.Extract.Output == "" {
		c.Extract.Output = DefaultOutput
	}
	if c.Extract.KeySeparator == nil {
		sep := "."
		c.Extract.KeySeparator = &sep
	}
	if c.Extract.PluralSeparator == "" {
		c.Extract.PluralSeparator = "_"
	}
	if c.Extract.NSSeparator == "" {
		c.Extract.NSSeparator = ":"
	}
	if c.Extract.DefaultNS == nil {
		ns := DefaultNS
		c.Extract.DefaultNS = &ns
	}
	if c.Extract.Indent <= 0 {
		c.Extract.Indent = 2
	}
	if c.Extract.PrimaryLanguage == "" && len(c.Locales) > 0 {
		c.Extract.PrimaryLanguage = c.Locales[0]
	}
}

// validate enforces the fatal preconditions: at least one locale and a
// derivable primary language.
func (c *Config) validate() error {
	if len(c.Locales) == 0 {
		return &ConfigError{Msg: "no locales configured and none detected"}
	}
	if c.Extract.PrimaryLanguage == "" {
		c.Extract.PrimaryLanguage = c.Locales[0]
	}
	found := false
	for _, l := range c.Locales {
		if l == c.Extract.PrimaryLanguage {
			found = true
			break
		}
	}
	if !found {
		return &ConfigError{Msg: fmt.Sprintf("primary language %q is not in locales", c.Extract.PrimaryLanguage)}
	}
	if !strings.Contains(c.Extract.Output, "{{language}}") {
		return &ConfigError{Msg: "extract.output must contain a {{language}} placeholder"}
	}
	if c.Extract.MergeNamespaces && strings.Contains(c.Extract.Output, "{{namespace}}") {
		return &ConfigError{Msg: "extract.output must not contain {{namespace}} when merge_namespaces is set"}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// KeySeparator returns the configured nested-key separator ("" = flat).
func (c *Config) KeySeparator() string {
	return *c.Extract.KeySeparator
}

// DefaultNamespace returns the default namespace name ("" = disabled).
func (c *Config) DefaultNamespace() string {
	return *c.Extract.DefaultNS
}

// MergeNamespaces reports whether all namespaces of a locale share one
// file: either explicitly enabled or implied by an output template
// without a {{namespace}} placeholder.
func (c *Config) MergeNamespaces() bool {
	return c.Extract.MergeNamespaces || !strings.Contains(c.Extract.Output, "{{namespace}}")
}

// SecondaryLocales returns the configured secondary languages, defaulting
// to all locales except the primary, in config order.
func (c *Config) SecondaryLocales() []string {
	if len(c.Extract.SecondaryLanguages) > 0 {
		return c.Extract.SecondaryLanguages
	}
	var out []string
	for _, l := range c.Locales {
		if l != c.Extract.PrimaryLanguage {
			out = append(out, l)
		}
	}
	return out
}

// HasLocale reports whether the locale is configured.
func (c *Config) HasLocale(locale string) bool {
	for _, l := range c.Locales {
		if l == locale {
			return true
		}
	}
	return false
}

// ExtractOptions derives the candidate-normalization options.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{
		NSSeparator:      c.Extract.NSSeparator,
		PluralSeparator:  c.Extract.PluralSeparator,
		DefaultNamespace: c.DefaultNamespace(),
		IgnoreNamespaces: c.Extract.IgnoreNamespaces,
	}
}

// ---------------------------------------------------------------------------
// Locale auto-detection
// ---------------------------------------------------------------------------

// DetectLocales infers locales from existing resource files under the
// output template's base directory. Two layouts are recognized, matching
// the two common template shapes: per-locale directories
// (locales/{{language}}/...) and per-locale files (locales/{{language}}.json).
func DetectLocales(rootDir, output string) []string {
	i := strings.Index(output, "{{language}}")
	if i < 0 {
		return nil
	}
	base := filepath.Join(rootDir, filepath.Dir(output[:i]+"x"))

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	rest := output[i+len("{{language}}"):]
	dirLayout := strings.Contains(rest, "/")

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if dirLayout {
			if entry.IsDir() && isLocaleID(name) {
				langs = append(langs, name)
			}
			continue
		}
		if !entry.IsDir() && strings.HasSuffix(name, ".json") {
			lang := strings.TrimSuffix(name, ".json")
			if isLocaleID(lang) {
				langs = append(langs, lang)
			}
		}
	}
	sort.Strings(langs)
	return langs
}

// isLocaleID checks if a string looks like a locale identifier:
// en, de, pt-BR, zh-CN, sr-Latn-RS (BCP 47 with hyphens or underscores).
func isLocaleID(s string) bool {
	if s == "" {
		return false
	}
	parts := strings.Split(strings.ReplaceAll(s, "_", "-"), "-")
	if len(parts[0]) < 2 || len(parts[0]) > 3 {
		return false
	}
	for _, r := range parts[0] {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	for _, p := range parts[1:] {
		if len(p) < 2 || len(p) > 8 {
			return false
		}
	}
	return true
}
