// Package report renders reconciliation results for the terminal.
//
// Three mutually exclusive projections over one StatusReport: the overall
// per-locale summary, a single-namespace summary across locales, and a
// per-key detail view for one locale. Progress bars always reflect the
// true totals, even when the hide-translated filter suppresses rows.
package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/localekit/keysync/reconcile"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

const barWidth = 20

// UserInputError marks a report request for a locale or namespace that
// does not exist. It is non-fatal: the caller reports it and the run
// otherwise completes normally.
type UserInputError struct {
	Msg string
}

func (e *UserInputError) Error() string {
	return e.Msg
}

// Options select the projection mode.
type Options struct {
	// Locale switches to detail mode for that locale.
	Locale string
	// Namespace scopes detail mode to one namespace, or, without a
	// locale, selects the namespace-summary mode.
	Namespace string
	// HideTranslated suppresses translated rows in detail mode.
	HideTranslated bool
}

// Render writes the selected projection. Unknown locales or namespaces
// yield a *UserInputError and no output.
func Render(w io.Writer, r *reconcile.StatusReport, opts Options) error {
	if opts.Namespace != "" {
		if _, ok := r.KeysByNamespace[opts.Namespace]; !ok {
			return &UserInputError{Msg: fmt.Sprintf("namespace %q was not found in the extracted keys", opts.Namespace)}
		}
	}
	switch {
	case opts.Locale != "":
		return renderDetail(w, r, opts)
	case opts.Namespace != "":
		return renderNamespace(w, r, opts.Namespace)
	default:
		renderOverall(w, r)
		return nil
	}
}

// renderOverall prints the per-locale aggregate summary.
func renderOverall(w io.Writer, r *reconcile.StatusReport) {
	fmt.Fprintf(w, "\n%sTranslation Status%s\n", colorBlue, colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  Keys:       %d base keys in %d namespaces\n",
		r.TotalBaseKeys, len(r.NamespaceOrder))
	fmt.Fprintf(w, "  Primary:    %s%s (source of truth, 100%%)\n",
		r.Primary, localeName(r.Primary))
	fmt.Fprintln(w)

	for _, locale := range r.LocaleOrder {
		ls := r.Languages[locale]
		pct := percent(ls.TotalTranslated, ls.TotalKeys)
		fmt.Fprintf(w, "  %-10s %s %s%3d%%%s (%d/%d)%s\n",
			locale, bar(pct), pctColor(pct), pct, colorReset,
			ls.TotalTranslated, ls.TotalKeys, localeName(locale))
	}
	fmt.Fprintln(w)
}

// renderNamespace prints one namespace across all locales.
func renderNamespace(w io.Writer, r *reconcile.StatusReport, ns string) error {
	fmt.Fprintf(w, "\n%sNamespace %q%s\n", colorBlue, ns, colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  Keys:       %d base keys\n\n", r.KeysByNamespace[ns])

	for _, locale := range r.LocaleOrder {
		nsStat := r.Languages[locale].Namespaces[ns]
		pct := percent(nsStat.TranslatedKeys, nsStat.TotalKeys)
		fmt.Fprintf(w, "  %-10s %s %s%3d%%%s (%d/%d)%s\n",
			locale, bar(pct), pctColor(pct), pct, colorReset,
			nsStat.TranslatedKeys, nsStat.TotalKeys, localeName(locale))
	}
	fmt.Fprintln(w)
	return nil
}

// renderDetail prints per-namespace progress and every key for one
// locale. Hidden rows never change the progress numbers.
func renderDetail(w io.Writer, r *reconcile.StatusReport, opts Options) error {
	locale := opts.Locale
	if locale == r.Primary {
		fmt.Fprintf(w, "%s is the primary language and is always 100%% translated.\n", locale)
		return nil
	}
	ls, ok := r.Languages[locale]
	if !ok {
		return &UserInputError{Msg: fmt.Sprintf("locale %q is not configured", locale)}
	}

	pct := percent(ls.TotalTranslated, ls.TotalKeys)
	fmt.Fprintf(w, "\n%sLocale %s%s%s\n", colorBlue, locale, localeName(locale), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  Overall    %s %s%3d%%%s (%d/%d)\n\n",
		bar(pct), pctColor(pct), pct, colorReset, ls.TotalTranslated, ls.TotalKeys)

	for _, ns := range r.NamespaceOrder {
		if opts.Namespace != "" && ns != opts.Namespace {
			continue
		}
		nsStat := ls.Namespaces[ns]
		nsPct := percent(nsStat.TranslatedKeys, nsStat.TotalKeys)
		fmt.Fprintf(w, "  %s%s%s  %s %s%3d%%%s (%d/%d)\n",
			colorBlue, ns, colorReset, bar(nsPct),
			pctColor(nsPct), nsPct, colorReset,
			nsStat.TranslatedKeys, nsStat.TotalKeys)

		for _, d := range nsStat.KeyDetails {
			if d.IsTranslated {
				if opts.HideTranslated {
					continue
				}
				fmt.Fprintf(w, "    %s✓%s %s\n", colorGreen, colorReset, d.Key)
			} else {
				fmt.Fprintf(w, "    %s✗%s %s\n", colorRed, colorReset, d.Key)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

// bar renders a fixed-width progress bar.
func bar(pct int) string {
	filled := pct * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

func percent(translated, total int) int {
	if total == 0 {
		return 100
	}
	return translated * 100 / total
}

func pctColor(pct int) string {
	switch {
	case pct >= 100:
		return colorGreen
	case pct >= 50:
		return colorYellow
	default:
		return colorRed
	}
}

// localeName returns a " (English name)" suffix for a locale, or "" when
// the identifier cannot be parsed or has no known display name.
func localeName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	name := display.English.Languages().Name(tag)
	if name == "" || name == locale {
		return ""
	}
	return " (" + name + ")"
}
