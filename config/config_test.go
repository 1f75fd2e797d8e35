package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
locales: [en, de, fr]
`)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Extract.PrimaryLanguage != "en" {
		t.Fatalf("primary = %q, want first locale", cfg.Extract.PrimaryLanguage)
	}
	if got := cfg.SecondaryLocales(); !reflect.DeepEqual(got, []string{"de", "fr"}) {
		t.Fatalf("secondary = %v", got)
	}
	if cfg.KeySeparator() != "." {
		t.Fatalf("key separator = %q", cfg.KeySeparator())
	}
	if cfg.Extract.PluralSeparator != "_" {
		t.Fatalf("plural separator = %q", cfg.Extract.PluralSeparator)
	}
	if cfg.DefaultNamespace() != "translation" {
		t.Fatalf("default namespace = %q", cfg.DefaultNamespace())
	}
	if cfg.Extract.Output != DefaultOutput {
		t.Fatalf("output = %q", cfg.Extract.Output)
	}
	if cfg.MergeNamespaces() {
		t.Fatal("default output template must not imply merge mode")
	}
}

func TestLoad_ExplicitlyDisabledFeatures(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
locales: [en, de]
extract:
  key_separator: ""
  default_ns: ""
`)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.KeySeparator() != "" {
		t.Fatalf("explicit empty key separator lost: %q", cfg.KeySeparator())
	}
	if cfg.DefaultNamespace() != "" {
		t.Fatalf("explicit disabled default namespace lost: %q", cfg.DefaultNamespace())
	}
}

func TestLoad_NoLocalesIsConfigError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
extract:
  output: "locales/{{language}}/{{namespace}}.json"
`)

	_, err := Load(dir, "")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
}

func TestLoad_PrimaryMustBeConfigured(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
locales: [en, de]
extract:
  primary_language: ja
`)

	_, err := Load(dir, "")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError for foreign primary, got %v", err)
	}
}

func TestLoad_MergeModeRejectsNamespacePlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
locales: [en, de]
extract:
  merge_namespaces: true
  output: "locales/{{language}}/{{namespace}}.json"
`)

	_, err := Load(dir, "")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestMergeNamespaces_ImpliedByTemplate(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
locales: [en, de]
extract:
  output: "locales/{{language}}.json"
`)

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.MergeNamespaces() {
		t.Fatal("template without {{namespace}} must imply merge mode")
	}
}

func TestDetectLocales_DirectoryLayout(t *testing.T) {
	dir := t.TempDir()
	for _, lang := range []string{"en", "de", "pt-BR"} {
		if err := os.MkdirAll(filepath.Join(dir, "locales", lang), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "locales", "notalangname"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := DetectLocales(dir, "locales/{{language}}/{{namespace}}.json")
	want := []string{"de", "en", "pt-BR"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectLocales = %v, want %v", got, want)
	}
}

func TestDetectLocales_FileLayout(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "locales"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"en.json", "zh-CN.json", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, "locales", name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := DetectLocales(dir, "locales/{{language}}.json")
	want := []string{"en", "zh-CN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DetectLocales = %v, want %v", got, want)
	}
}

func TestLoad_MissingFileAutoDetects(t *testing.T) {
	dir := t.TempDir()
	for _, lang := range []string{"en", "fr"} {
		if err := os.MkdirAll(filepath.Join(dir, "locales", lang), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Locales, []string{"en", "fr"}) {
		t.Fatalf("auto-detected locales = %v", cfg.Locales)
	}
}

func TestIsLocaleID(t *testing.T) {
	valid := []string{"en", "de", "pt-BR", "zh-CN", "sr-Latn-RS", "pt_BR", "fil"}
	for _, s := range valid {
		if !isLocaleID(s) {
			t.Fatalf("isLocaleID(%q) = false", s)
		}
	}
	invalid := []string{"", "e", "notalangname", "EN", "123", "en-"}
	for _, s := range invalid {
		if isLocaleID(s) {
			t.Fatalf("isLocaleID(%q) = true", s)
		}
	}
}
