// Package store loads and writes per-locale, per-namespace translation
// resource files.
//
// Reads are forgiving: a missing file is an empty tree (0% translated),
// and an unparsable file degrades to an empty tree with a recorded
// warning so one bad file never blocks visibility into the rest of the
// project. Writes go through write-temp-then-rename and are serialized
// per target file.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/localekit/keysync/config"
	"github.com/localekit/keysync/tree"
)

// Store resolves resource paths and caches loaded trees for one
// reconciliation run. Create a fresh Store per run; the cache must not
// outlive a pass (watch-style callers re-create it).
type Store struct {
	root string
	cfg  *config.Config

	trees    map[string]*tree.Tree // path -> parsed tree
	warnings []string

	writeMu sync.Mutex
	fileMu  map[string]*sync.Mutex // per-file write serialization
}

// New returns a store rooted at the project directory.
func New(root string, cfg *config.Config) *Store {
	return &Store{
		root:   root,
		cfg:    cfg,
		trees:  make(map[string]*tree.Tree),
		fileMu: make(map[string]*sync.Mutex),
	}
}

// PathFor resolves the on-disk path for a (locale, namespace) pair from
// the output template. In merge-namespaces mode the namespace does not
// participate: all namespaces of a locale share one file.
func (s *Store) PathFor(locale, ns string) string {
	p := strings.ReplaceAll(s.cfg.Extract.Output, "{{language}}", locale)
	if !s.cfg.MergeNamespaces() {
		p = strings.ReplaceAll(p, "{{namespace}}", ns)
	}
	return filepath.Join(s.root, p)
}

// Load returns the tree to resolve keys of (locale, namespace) against.
//
// In merge-namespaces mode the shared per-locale tree is loaded once and
// the namespace is a sub-tree key within it; when that sub-tree is absent
// the root tree itself is returned, which covers legacy flat files that
// never grew a namespace wrapper.
func (s *Store) Load(locale, ns string) *tree.Tree {
	if s.cfg.MergeNamespaces() {
		root := s.loadFile(s.PathFor(locale, ""))
		if sub, ok := root.Subtree(ns); ok {
			return sub
		}
		return root
	}
	return s.loadFile(s.PathFor(locale, ns))
}

// LoadLocale returns the shared per-locale tree (merge mode only).
func (s *Store) LoadLocale(locale string) *tree.Tree {
	return s.loadFile(s.PathFor(locale, ""))
}

// Sources returns the ordered lookup chain for (locale, namespace): the
// namespace's own tree first, then the fallback namespace's tree when one
// is configured and different. Lookups short-circuit on the first
// non-empty hit.
func (s *Store) Sources(locale, ns string) []*tree.Tree {
	out := []*tree.Tree{s.Load(locale, ns)}
	if fb := s.cfg.Extract.FallbackNS; fb != "" && fb != ns {
		out = append(out, s.Load(locale, fb))
	}
	return out
}

// loadFile reads and parses one resource file, caching by path.
func (s *Store) loadFile(path string) *tree.Tree {
	if t, ok := s.trees[path]; ok {
		return t
	}

	t := tree.New()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Missing files are not an error: nothing is translated yet.
	case err != nil:
		s.warnings = append(s.warnings, fmt.Sprintf("%s: %v (treating as empty)", path, err))
	default:
		parsed, perr := tree.Parse(data)
		if perr != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("%s: %v (treating as empty)", path, perr))
		} else {
			t = parsed
		}
	}

	s.trees[path] = t
	return t
}

// Warnings returns recovered read problems accumulated during this run.
func (s *Store) Warnings() []string {
	return s.warnings
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// WriteIntent is one pending file write computed by the reconciliation
// engine: the full tree that should end up at Path.
type WriteIntent struct {
	Path string
	Tree *tree.Tree
}

// Apply persists write intents. Each file is written atomically
// (temp file + rename) and writes to the same path are serialized, since
// sync is read-modify-write and a lost update would drop translations.
func (s *Store) Apply(intents []WriteIntent) error {
	for _, in := range intents {
		if err := s.writeOne(in); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeOne(in WriteIntent) error {
	mu := s.lockFor(in.Path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(in.Path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", in.Path, err)
	}
	data := in.Tree.Marshal(s.cfg.Extract.Indent)
	if err := atomic.WriteFile(in.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", in.Path, err)
	}
	return nil
}

func (s *Store) lockFor(path string) *sync.Mutex {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	mu, ok := s.fileMu[path]
	if !ok {
		mu = &sync.Mutex{}
		s.fileMu[path] = mu
	}
	return mu
}
