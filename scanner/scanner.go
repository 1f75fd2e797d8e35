// Package scanner finds translation call sites in JS/TS source trees.
//
// It is a lightweight, regex-based implementation of the scanner
// interface the extraction model consumes: it walks the configured input
// directories, skips the usual non-source directories, and yields one raw
// candidate per t()/i18next.t() call site, including count/ordinal
// options, inline namespaces, and default values. It does not parse
// syntax trees; dynamic keys built at runtime are invisible to it.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/localekit/keysync/extract"
)

// sourceExtensions are the file types scanned for call sites.
var sourceExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".ts":  true,
	".tsx": true,
	".mjs": true,
	".cjs": true,
}

// skipDirs contains directory names to skip during source scanning.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"vendor":       true,
}

// quotedValue matches one string literal of any quote kind. RE2 has no
// backreferences, so each quote kind is its own alternative; the contents
// land in exactly one capture group, resolved by submatch.
const quotedValue = `'((?:\\.|[^'\\])*)'|"((?:\\.|[^"\\])*)"|` + "`((?:\\\\.|[^`\\\\])*)`"

var (
	// callPattern matches t('key'), t("key"), t(`key`) and the
	// i18next.t / i18n.t variants.
	callPattern = regexp.MustCompile(`(?:^|[^\w.])(?:i18next\.|i18n\.)?t\(\s*(?:` + quotedValue + `)`)

	countPattern        = regexp.MustCompile(`[{,]\s*count\s*:`)
	ordinalPattern      = regexp.MustCompile(`[{,]\s*ordinal\s*:\s*true`)
	nsPattern           = regexp.MustCompile(`[{,]\s*ns\s*:\s*(?:` + quotedValue + `)`)
	defaultValuePattern = regexp.MustCompile(`[{,]\s*defaultValue\s*:\s*(?:` + quotedValue + `)`)
	// secondArgPattern matches a positional default value:
	// t('key', 'Default text').
	secondArgPattern = regexp.MustCompile(`^\s*,\s*(?:` + quotedValue + `)`)
)

// submatch returns the text of the one capture group that participated in
// a quotedValue match.
func submatch(src string, m []int) (string, bool) {
	for g := 1; 2*g+1 < len(m); g++ {
		if m[2*g] >= 0 {
			return src[m[2*g]:m[2*g+1]], true
		}
	}
	return "", false
}

// Scanner walks source directories and yields raw key candidates. It
// implements extract.Source.
type Scanner struct {
	dirs []string
}

// New returns a scanner over the given directories.
func New(dirs []string) *Scanner {
	return &Scanner{dirs: dirs}
}

// Scan walks every configured directory once and returns all call-site
// candidates in deterministic (sorted file, source order) order. Any
// filesystem error is fatal: a partial scan would misreport keys.
func (s *Scanner) Scan() ([]extract.RawKey, error) {
	files, err := s.findSources()
	if err != nil {
		return nil, err
	}

	var keys []extract.RawKey
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		keys = append(keys, ScanSource(string(data))...)
	}
	return keys, nil
}

// findSources recursively collects source files with known extensions.
func (s *Scanner) findSources() ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, dir := range s.dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if os.IsNotExist(err) && path == dir {
					return filepath.SkipDir
				}
				return err
			}
			if info.IsDir() {
				if skipDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if sourceExtensions[filepath.Ext(path)] && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ScanSource extracts raw key candidates from one source text.
func ScanSource(src string) []extract.RawKey {
	var keys []extract.RawKey

	for _, m := range callPattern.FindAllStringSubmatchIndex(src, -1) {
		quoted, ok := submatch(src, m)
		key := unescape(quoted)
		if !ok || key == "" {
			continue
		}

		// The remaining arguments of this call, up to the matching
		// closing paren, carry the options object.
		rest := callArgs(src, m[1])

		raw := extract.RawKey{
			Key:       key,
			HasCount:  countPattern.MatchString(rest),
			IsOrdinal: ordinalPattern.MatchString(rest),
		}
		if nm := nsPattern.FindStringSubmatchIndex(rest); nm != nil {
			raw.Namespace, _ = submatch(rest, nm)
		}
		if dm := defaultValuePattern.FindStringSubmatchIndex(rest); dm != nil {
			v, _ := submatch(rest, dm)
			raw.DefaultValue = unescape(v)
		} else if sm := secondArgPattern.FindStringSubmatchIndex(rest); sm != nil {
			v, _ := submatch(rest, sm)
			raw.DefaultValue = unescape(v)
		}

		keys = append(keys, raw)
	}

	return keys
}

// callArgs returns the source text between the end of the matched key
// argument and the call's closing paren, balancing nested parens and
// braces and skipping string literals.
func callArgs(src string, from int) string {
	depth := 1 // we are inside the opening paren of the call
	var quote byte
	for i := from; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth == 0 {
				return src[from:i]
			}
		}
	}
	return src[from:]
}

// unescape resolves backslash escapes inside a matched string literal.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
