package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/localekit/keysync/extract"
)

func TestScanSource_CallShapes(t *testing.T) {
	src := `
import { useTranslation } from 'react-i18next';

function App() {
  const { t } = useTranslation();
  return (
    <div>
      {t('header.title')}
      {t("common:button.save")}
      {t('items.count', { count: items.length })}
      {t('place', { count: n, ordinal: true })}
      {t('greeting', 'Hello there')}
      {t('farewell', { defaultValue: 'Goodbye', ns: 'extra' })}
      {i18next.t('standalone.key')}
    </div>
  );
}
`
	got := ScanSource(src)
	want := []extract.RawKey{
		{Key: "header.title"},
		{Key: "common:button.save"},
		{Key: "items.count", HasCount: true},
		{Key: "place", HasCount: true, IsOrdinal: true},
		{Key: "greeting", DefaultValue: "Hello there"},
		{Key: "farewell", Namespace: "extra", DefaultValue: "Goodbye"},
		{Key: "standalone.key"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ScanSource:\n got %+v\nwant %+v", got, want)
	}
}

func TestScanSource_IgnoresNonCalls(t *testing.T) {
	src := `
const result = format('not a translation');
const width = parseInt('42');
// t('commented.out') still matches: the scanner is line-agnostic
`
	got := ScanSource(src)
	if len(got) != 1 || got[0].Key != "commented.out" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestScanSource_QuoteKinds(t *testing.T) {
	src := "t(`template.key`, { ns: `extra`, defaultValue: `Back ticked` });\n" +
		`t("double.key", "Second arg");`

	got := ScanSource(src)
	want := []extract.RawKey{
		{Key: "template.key", Namespace: "extra", DefaultValue: "Back ticked"},
		{Key: "double.key", DefaultValue: "Second arg"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ScanSource:\n got %+v\nwant %+v", got, want)
	}
}

func TestScanSource_EscapedQuotes(t *testing.T) {
	got := ScanSource(`t('it\'s.key', { defaultValue: 'won\'t break' })`)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %+v", got)
	}
	if got[0].Key != "it's.key" || got[0].DefaultValue != "won't break" {
		t.Fatalf("escapes mishandled: %+v", got[0])
	}
}

func TestScan_WalksAndSkips(t *testing.T) {
	dir := t.TempDir()

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("app.tsx", `t('from.tsx')`)
	write("lib/util.js", `t('from.js')`)
	write("node_modules/dep/index.js", `t('from.dependency')`)
	write("notes.txt", `t('from.txt')`)

	keys, err := New([]string{dir}).Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	var names []string
	for _, k := range keys {
		names = append(names, k.Key)
	}
	// Files are visited in sorted order.
	want := []string{"from.tsx", "from.js"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("scanned keys = %v, want %v", names, want)
	}
}

func TestScan_MissingDirIsSkipped(t *testing.T) {
	dir := t.TempDir()
	keys, err := New([]string{filepath.Join(dir, "does-not-exist")}).Scan()
	if err != nil {
		t.Fatalf("missing input dir should not be fatal: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}
