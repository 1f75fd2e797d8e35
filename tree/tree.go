// Package tree implements ordered nested translation trees.
//
// A Tree is a JSON-like mapping from string segments to either a leaf
// string value or a nested Tree, addressed by delimiter-separated paths
// (e.g. "a.b.c"). Key order from the source file is preserved on every
// operation; keys inserted later are appended after the existing ones.
// Empty string values mean untranslated.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tree is an ordered nested mapping. Children are leaf strings, nested
// *Tree values, or raw JSON values (numbers, arrays, ...) carried through
// untouched.
type Tree struct {
	keys   []string
	values map[string]any // string | *Tree | json.RawMessage
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{values: make(map[string]any)}
}

// Len returns the number of direct children.
func (t *Tree) Len() int {
	return len(t.keys)
}

// Keys returns the direct child keys in their original order.
// The returned slice is a copy.
func (t *Tree) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Value returns the raw child value for a direct key.
func (t *Tree) Value(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Subtree returns the nested tree stored under a direct key, if any.
func (t *Tree) Subtree(key string) (*Tree, bool) {
	sub, ok := t.values[key].(*Tree)
	return sub, ok
}

// setChild inserts or replaces a direct child, appending new keys.
func (t *Tree) setChild(key string, v any) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// SetSubtree inserts or replaces a nested tree under a direct key.
func (t *Tree) SetSubtree(key string, sub *Tree) {
	t.setChild(key, sub)
}

// deleteChild removes a direct child, preserving the order of the rest.
func (t *Tree) deleteChild(key string) {
	if _, ok := t.values[key]; !ok {
		return
	}
	delete(t.values, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

// split breaks a path into segments. An empty separator means flat keys:
// the whole path is a single segment.
func split(path, sep string) []string {
	if sep == "" {
		return []string{path}
	}
	return strings.Split(path, sep)
}

// Lookup resolves a delimiter-separated path to a leaf string value.
// Only non-nested string leaves resolve; a path ending on a subtree or a
// raw JSON value reports a miss.
func (t *Tree) Lookup(path, sep string) (string, bool) {
	segs := split(path, sep)
	cur := t
	for i, seg := range segs {
		v, ok := cur.values[seg]
		if !ok {
			return "", false
		}
		if i == len(segs)-1 {
			s, ok := v.(string)
			return s, ok
		}
		sub, ok := v.(*Tree)
		if !ok {
			return "", false
		}
		cur = sub
	}
	return "", false
}

// Has reports whether the path resolves to any value (leaf or subtree).
func (t *Tree) Has(path, sep string) bool {
	segs := split(path, sep)
	cur := t
	for i, seg := range segs {
		v, ok := cur.values[seg]
		if !ok {
			return false
		}
		if i == len(segs)-1 {
			return true
		}
		sub, ok := v.(*Tree)
		if !ok {
			return false
		}
		cur = sub
	}
	return false
}

// Set writes a leaf string at a delimiter-separated path, creating
// intermediate subtrees as needed. New keys are appended after existing
// ones at every level. An intermediate leaf in the way is replaced by a
// subtree.
func (t *Tree) Set(path, sep, value string) {
	segs := split(path, sep)
	cur := t
	for _, seg := range segs[:len(segs)-1] {
		sub, ok := cur.values[seg].(*Tree)
		if !ok {
			sub = New()
			cur.setChild(seg, sub)
		}
		cur = sub
	}
	cur.setChild(segs[len(segs)-1], value)
}

// Delete removes the value at a path and prunes subtrees left empty.
// Returns true if something was removed.
func (t *Tree) Delete(path, sep string) bool {
	segs := split(path, sep)
	return t.deletePath(segs)
}

func (t *Tree) deletePath(segs []string) bool {
	if len(segs) == 1 {
		if _, ok := t.values[segs[0]]; !ok {
			return false
		}
		t.deleteChild(segs[0])
		return true
	}
	sub, ok := t.values[segs[0]].(*Tree)
	if !ok {
		return false
	}
	removed := sub.deletePath(segs[1:])
	if removed && sub.Len() == 0 {
		t.deleteChild(segs[0])
	}
	return removed
}

// Merge copies entries from other into t without overwriting: existing
// leaves win, matching subtrees merge recursively, everything else is
// appended in other's order.
func (t *Tree) Merge(other *Tree) {
	for _, k := range other.keys {
		ov := other.values[k]
		tv, ok := t.values[k]
		if !ok {
			t.setChild(k, cloneValue(ov))
			continue
		}
		tsub, tok := tv.(*Tree)
		osub, ook := ov.(*Tree)
		if tok && ook {
			tsub.Merge(osub)
		}
	}
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	out := New()
	for _, k := range t.keys {
		out.setChild(k, cloneValue(t.values[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case *Tree:
		return val.Clone()
	case json.RawMessage:
		cp := make(json.RawMessage, len(val))
		copy(cp, val)
		return cp
	default:
		return v
	}
}

// LeafPaths returns every string-leaf path in document order, joined with
// sep. With an empty separator only top-level leaves are returned, since
// deeper paths would not be addressable.
func (t *Tree) LeafPaths(sep string) []string {
	var out []string
	t.walkLeaves(nil, func(segs []string, _ string) {
		if sep == "" {
			if len(segs) == 1 {
				out = append(out, segs[0])
			}
			return
		}
		out = append(out, strings.Join(segs, sep))
	})
	return out
}

func (t *Tree) walkLeaves(prefix []string, fn func(segs []string, value string)) {
	for _, k := range t.keys {
		segs := append(append([]string(nil), prefix...), k)
		switch v := t.values[k].(type) {
		case *Tree:
			v.walkLeaves(segs, fn)
		case string:
			fn(segs, v)
		}
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// Parse parses a JSON object into a tree, preserving key order.
// The top-level value must be an object.
func Parse(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected top-level object, got %v", tok)
	}
	return parseObject(dec)
}

// parseObject reads object members after the opening brace has been
// consumed. Values are captured as raw messages and classified: nested
// objects recurse, strings become leaves, everything else is carried raw.
func parseObject(dec *json.Decoder) (*Tree, error) {
	t := New()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding value for key %q: %w", key, err)
		}

		trimmed := bytes.TrimSpace(raw)
		switch {
		case len(trimmed) > 0 && trimmed[0] == '{':
			sub, err := Parse(trimmed)
			if err != nil {
				return nil, err
			}
			t.setChild(key, sub)
		case len(trimmed) > 0 && trimmed[0] == '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return nil, fmt.Errorf("decoding string for key %q: %w", key, err)
			}
			t.setChild(key, s)
		default:
			var buf bytes.Buffer
			if err := json.Compact(&buf, trimmed); err != nil {
				return nil, fmt.Errorf("compacting value for key %q: %w", key, err)
			}
			t.setChild(key, json.RawMessage(buf.Bytes()))
		}
	}
	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return t, nil
}

// Marshal renders the tree as indented JSON with keys in tree order and a
// trailing newline, matching the layout i18next resource files ship with.
func (t *Tree) Marshal(indent int) []byte {
	if indent <= 0 {
		indent = 2
	}
	var b strings.Builder
	t.writeJSON(&b, indent, 1)
	b.WriteByte('\n')
	return []byte(b.String())
}

func (t *Tree) writeJSON(b *strings.Builder, indent, depth int) {
	if len(t.keys) == 0 {
		b.WriteString("{}")
		return
	}
	pad := strings.Repeat(" ", indent*depth)
	closePad := strings.Repeat(" ", indent*(depth-1))

	b.WriteString("{\n")
	for i, k := range t.keys {
		b.WriteString(pad)
		b.WriteString(strconv.Quote(k))
		b.WriteString(": ")
		switch v := t.values[k].(type) {
		case *Tree:
			v.writeJSON(b, indent, depth+1)
		case string:
			b.WriteString(strconv.Quote(v))
		case json.RawMessage:
			b.Write(v)
		}
		if i < len(t.keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(closePad)
	b.WriteByte('}')
}
