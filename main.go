// keysync — i18next translation key reconciler: extracts translation
// keys from source and reconciles them against per-locale resource files.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/localekit/keysync/config"
	"github.com/localekit/keysync/extract"
	"github.com/localekit/keysync/i18n"
	"github.com/localekit/keysync/reconcile"
	"github.com/localekit/keysync/report"
	"github.com/localekit/keysync/scanner"
	"github.com/localekit/keysync/store"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	cfgPath string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keysync",
		Short: "Reconcile i18next translation keys against resource files",
		Long: `keysync — i18next translation key reconciler.

Scans application source for t() call sites, expands plural keys per
target locale, and compares the result against the per-locale JSON
resource files. The status command reports what is translated, missing,
or stale; the sync command updates the files on disk without touching
existing translations.

Commands:
  status      Show translation progress (overall, per namespace, or per key)
  sync        Insert missing keys into resource files (non-destructive)
  scan        List the keys extracted from source
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to .keysync.yaml (default: <root>/.keysync.yaml)")

	root.AddCommand(
		newStatusCmd(),
		newSyncCmd(),
		newScanCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("keysync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// shared setup
// ---------------------------------------------------------------------------

// loadAndExtract performs the per-invocation setup shared by every
// command: config load (fatal on ConfigError), source scan (fatal on
// ScanError), and extraction-model build.
func loadAndExtract() (*config.Config, *extract.Set, error) {
	cfg, err := config.Load(rootDir, cfgPath)
	if err != nil {
		return nil, nil, err
	}

	dirs := make([]string, 0, len(cfg.Extract.Input))
	for _, d := range cfg.Extract.Input {
		dirs = append(dirs, filepath.Join(rootDir, d))
	}

	set, err := extract.FromSource(scanner.New(dirs), cfg.ExtractOptions())
	if err != nil {
		return nil, nil, err
	}
	return cfg, set, nil
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var (
		namespace      string
		hideTranslated bool
		strict         bool
	)

	cmd := &cobra.Command{
		Use:   "status [locale]",
		Short: "Show translation progress",
		Long: `Show translation progress for all secondary locales.

With a locale argument, shows every key of that locale with its
translated/missing marker. With --namespace alone, shows that namespace's
progress across all locales. Does not modify any files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locale := ""
			if len(args) == 1 {
				locale = args[0]
			}
			return runStatus(locale, namespace, hideTranslated, strict)
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "Restrict output to one namespace")
	cmd.Flags().BoolVar(&hideTranslated, "hide-translated", false, "Hide translated keys in the detail view")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when translations are missing")

	return cmd
}

func runStatus(locale, namespace string, hideTranslated, strict bool) error {
	cfg, set, err := loadAndExtract()
	if err != nil {
		return err
	}
	if set.Len() == 0 {
		logInfo("%s", i18n.T("No translation keys found in source"))
		return nil
	}

	st := store.New(rootDir, cfg)
	rep := reconcile.New(cfg, st).Status(set)

	for _, w := range st.Warnings() {
		logWarning("%s", w)
	}

	renderErr := report.Render(os.Stdout, rep, report.Options{
		Locale:         locale,
		Namespace:      namespace,
		HideTranslated: hideTranslated,
	})
	var uie *report.UserInputError
	if errors.As(renderErr, &uie) {
		// Bad locale/namespace input is reported but never fails the run.
		logWarning("%s", uie.Msg)
		return nil
	}
	if renderErr != nil {
		return renderErr
	}

	if !rep.HasMissing() {
		logSuccess("%s", i18n.T("All translations are up to date"))
		return nil
	}
	if strict {
		return errors.New(i18n.T("Missing translations found"))
	}
	return nil
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

func newSyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Insert missing keys into resource files",
		Long: `Bring resource files in line with the keys extracted from source.

Missing keys are inserted (with default values for the primary language,
empty strings otherwise). Existing translations are never overwritten;
keys gone from source are removed only when remove_unused is configured.
Files are written atomically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show target files without writing")

	return cmd
}

func runSync(dryRun bool) error {
	cfg, set, err := loadAndExtract()
	if err != nil {
		return err
	}
	logInfo("%s", fmt.Sprintf(i18n.N("Extracted %d key", "Extracted %d keys", set.Len()), set.Len()))

	st := store.New(rootDir, cfg)
	intents := reconcile.New(cfg, st).SyncIntents(set)

	for _, w := range st.Warnings() {
		logWarning("%s", w)
	}

	if dryRun {
		for _, in := range intents {
			fmt.Println(in.Path)
		}
		return nil
	}

	if err := st.Apply(intents); err != nil {
		return err
	}
	logSuccess("%s", fmt.Sprintf(i18n.N("Wrote %d file", "Wrote %d files", len(intents)), len(intents)))
	return nil
}

// ---------------------------------------------------------------------------
// scan
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List the keys extracted from source",
		Long:  `Print every extracted key grouped by namespace, with plural and ordinal markers. A debugging aid for the scanner and extraction settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan()
		},
	}
}

func runScan() error {
	_, set, err := loadAndExtract()
	if err != nil {
		return err
	}
	if set.Len() == 0 {
		logInfo("%s", i18n.T("No translation keys found in source"))
		return nil
	}

	for _, ns := range set.Namespaces() {
		keys := set.ByNamespace(ns)
		fmt.Printf("\n%s%s%s (%d)\n", colorBlue, ns, colorReset, len(keys))
		for _, k := range keys {
			marker := ""
			switch {
			case k.IsExpandedPlural:
				marker = " [plural form]"
			case k.HasCount && k.IsOrdinal:
				marker = " [plural, ordinal]"
			case k.HasCount:
				marker = " [plural]"
			}
			fmt.Printf("  %s%s\n", k.Key, marker)
		}
	}
	fmt.Println()
	logInfo("%s", fmt.Sprintf(i18n.N("Extracted %d key", "Extracted %d keys", set.Len()), set.Len()))
	return nil
}
