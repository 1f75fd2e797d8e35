package tree

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_PreservesOrderAndNesting(t *testing.T) {
	data := []byte(`{
  "b": "two",
  "a": {
    "nested": "one",
    "empty": ""
  },
  "c": 42,
  "d": ["x", "y"]
}`)

	tr, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if got := tr.Keys(); !reflect.DeepEqual(got, []string{"b", "a", "c", "d"}) {
		t.Fatalf("unexpected key order: %v", got)
	}

	if v, ok := tr.Lookup("a.nested", "."); !ok || v != "one" {
		t.Fatalf("Lookup(a.nested) = %q, %v", v, ok)
	}
	if v, ok := tr.Lookup("a.empty", "."); !ok || v != "" {
		t.Fatalf("Lookup(a.empty) = %q, %v; empty leaves must resolve", v, ok)
	}

	// Non-string leaves are carried but never resolve as translations.
	if _, ok := tr.Lookup("c", "."); ok {
		t.Fatal("numeric leaf resolved as a string value")
	}
	if _, ok := tr.Lookup("d", "."); ok {
		t.Fatal("array leaf resolved as a string value")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"broken":`)); err == nil {
		t.Fatal("expected parse error for truncated JSON")
	}
	if _, err := Parse([]byte(`["not", "an", "object"]`)); err == nil {
		t.Fatal("expected parse error for non-object root")
	}
}

func TestLookup_FlatSeparator(t *testing.T) {
	tr := New()
	tr.Set("a.b", "", "flat value")

	if v, ok := tr.Lookup("a.b", ""); !ok || v != "flat value" {
		t.Fatalf("flat Lookup = %q, %v", v, ok)
	}
	if _, ok := tr.Lookup("a", ""); ok {
		t.Fatal("partial flat key should miss")
	}
}

func TestSet_AppendsNewKeysAfterExisting(t *testing.T) {
	tr, err := Parse([]byte(`{"x": "1", "y": "2"}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	tr.Set("z", ".", "3")
	tr.Set("x", ".", "updated")

	if got := tr.Keys(); !reflect.DeepEqual(got, []string{"x", "y", "z"}) {
		t.Fatalf("unexpected key order after Set: %v", got)
	}
	if v, _ := tr.Lookup("x", "."); v != "updated" {
		t.Fatalf("Set did not update existing key: %q", v)
	}
}

func TestDelete_PrunesEmptySubtrees(t *testing.T) {
	tr := New()
	tr.Set("a.b.c", ".", "v")
	tr.Set("a.other", ".", "kept")

	if !tr.Delete("a.b.c", ".") {
		t.Fatal("Delete reported nothing removed")
	}
	if tr.Has("a.b", ".") {
		t.Fatal("empty intermediate subtree was not pruned")
	}
	if v, ok := tr.Lookup("a.other", "."); !ok || v != "kept" {
		t.Fatalf("sibling lost after prune: %q, %v", v, ok)
	}
	if tr.Delete("a.missing", ".") {
		t.Fatal("Delete of missing path reported removal")
	}
}

func TestMerge_KeepsExistingValues(t *testing.T) {
	dst := New()
	dst.Set("a.x", ".", "mine")

	src := New()
	src.Set("a.x", ".", "theirs")
	src.Set("a.y", ".", "added")
	src.Set("b", ".", "new top")

	dst.Merge(src)

	if v, _ := dst.Lookup("a.x", "."); v != "mine" {
		t.Fatalf("Merge overwrote existing value: %q", v)
	}
	if v, _ := dst.Lookup("a.y", "."); v != "added" {
		t.Fatalf("Merge dropped new nested value: %q", v)
	}
	if v, _ := dst.Lookup("b", "."); v != "new top" {
		t.Fatalf("Merge dropped new top-level value: %q", v)
	}
}

func TestLeafPaths(t *testing.T) {
	tr, err := Parse([]byte(`{"a": {"b": "1", "c": "2"}, "d": "3", "n": 7}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	got := tr.LeafPaths(".")
	want := []string{"a.b", "a.c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LeafPaths = %v, want %v", got, want)
	}
}

func TestMarshal_OrderAndRoundTrip(t *testing.T) {
	data := []byte(`{
  "zebra": "z",
  "apple": {
    "pie": "",
    "count": 3
  }
}`)
	tr, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	tr.Set("apple.newest", ".", "appended")

	out := string(tr.Marshal(2))

	iZebra := strings.Index(out, `"zebra"`)
	iApple := strings.Index(out, `"apple"`)
	iPie := strings.Index(out, `"pie"`)
	iCount := strings.Index(out, `"count"`)
	iNew := strings.Index(out, `"newest"`)
	if !(iZebra < iApple && iApple < iPie && iPie < iCount && iCount < iNew) {
		t.Fatalf("marshal order wrong:\n%s", out)
	}
	if !strings.Contains(out, `"count": 3`) {
		t.Fatalf("raw value not preserved:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Fatalf("missing trailing newline:\n%q", out)
	}

	// Reparsing the output yields the same structure.
	again, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if !reflect.DeepEqual(again.LeafPaths("."), tr.LeafPaths(".")) {
		t.Fatal("round trip changed leaf paths")
	}
}

func TestClone_Isolated(t *testing.T) {
	orig := New()
	orig.Set("a.b", ".", "v")

	cp := orig.Clone()
	cp.Set("a.b", ".", "changed")
	cp.Set("a.new", ".", "x")

	if v, _ := orig.Lookup("a.b", "."); v != "v" {
		t.Fatalf("Clone shares state with original: %q", v)
	}
	if orig.Has("a.new", ".") {
		t.Fatal("Clone insertion leaked into original")
	}
}
