package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"makepot/internal/config"
	"makepot/internal/pipeline"
	"makepot/internal/pofile"
	"makepot/internal/storage"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var (
	rootCmd = &cobra.Command{
		Use:           "makepot",
		Short:         "Extract translatable strings into a gettext POT file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string

	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Path to the YAML config file")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(cacheCmd())
}

type extractFlags struct {
	slug              string
	domain            string
	projectType       string
	packageName       string
	fileComment       string
	merge             string
	subtract          string
	include           string
	exclude           string
	cache             string
	workers           int
	subtractMerge     bool
	ignoreDomain      bool
	skipJS            bool
	skipPHP           bool
	skipBlockJSON     bool
	skipThemeJSON     bool
	noLocation        bool
	allowSyntaxErrors bool
	json              bool
	silent            bool
	debug             bool
}

func extractCmd() *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract [source] [destination]",
		Short: "Scan PHP, JavaScript, TypeScript and JSON files and write a POT file",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if len(args) > 0 {
				cfg.Project.Root = args[0]
			}
			if len(args) > 1 {
				cfg.Output.Destination = args[1]
			}
			applyFlags(cmd, &f, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			setupLogging(cfg)
			return runExtract(cmd.Context(), cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.slug, "slug", "", "Plugin or theme slug (defaults to the source directory name)")
	fl.StringVar(&f.domain, "domain", "", "Text domain to extract (defaults to the Text Domain header, then the slug)")
	fl.StringVar(&f.projectType, "project-type", "", "plugin, theme, block or generic (auto-detected when empty)")
	fl.StringVar(&f.packageName, "package-name", "", "Project-Id-Version name override")
	fl.StringVar(&f.fileComment, "file-comment", "", "Comment placed at the top of the POT file")
	fl.StringVar(&f.merge, "merge", "", "Comma-separated catalogs to merge into the result")
	fl.StringVar(&f.subtract, "subtract", "", "Comma-separated catalogs whose strings are left out")
	fl.BoolVar(&f.subtractMerge, "subtract-and-merge", false, "Write references of subtracted strings back into the subtract catalogs")
	fl.StringVar(&f.include, "include", "", "Comma-separated files and paths to scan exclusively")
	fl.StringVar(&f.exclude, "exclude", "", "Comma-separated files and paths to skip")
	fl.BoolVar(&f.ignoreDomain, "ignore-domain", false, "Extract strings regardless of their text domain")
	fl.BoolVar(&f.skipJS, "skip-js", false, "Skip JavaScript and TypeScript files")
	fl.BoolVar(&f.skipPHP, "skip-php", false, "Skip PHP files")
	fl.BoolVar(&f.skipBlockJSON, "skip-block-json", false, "Skip block.json files")
	fl.BoolVar(&f.skipThemeJSON, "skip-theme-json", false, "Skip theme.json files")
	fl.BoolVar(&f.noLocation, "no-location", false, "Do not write #: reference lines")
	fl.BoolVar(&f.allowSyntaxErrors, "allow-syntax-errors", false, "Extract from files with syntax errors instead of skipping them")
	fl.IntVarP(&f.workers, "workers", "w", 0, "Parallel parsers (defaults to the CPU count)")
	fl.StringVar(&f.cache, "cache", "", "SQLite cache of per-file extraction results")
	fl.BoolVar(&f.json, "json", false, "Write the catalog as JSON instead of POT")
	fl.BoolVar(&f.silent, "silent", false, "Suppress informational output")
	fl.BoolVar(&f.debug, "debug", false, "Log skipped calls and other details")
	return cmd
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, f *extractFlags, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("slug") {
		cfg.Project.Slug = f.slug
	}
	if set("domain") {
		cfg.Project.Domain = f.domain
	}
	if set("project-type") {
		cfg.Project.Type = f.projectType
	}
	if set("package-name") {
		cfg.Project.PackageName = f.packageName
	}
	if set("file-comment") {
		cfg.Project.FileComment = f.fileComment
	}
	if set("merge") {
		cfg.Output.Merge = config.SplitList(f.merge)
	}
	if set("subtract") {
		cfg.Output.Subtract = config.SplitList(f.subtract)
	}
	if set("subtract-and-merge") {
		cfg.Output.SubtractAndMerge = f.subtractMerge
	}
	if set("include") {
		cfg.Extract.Include = config.SplitList(f.include)
	}
	if set("exclude") {
		cfg.Extract.Exclude = config.SplitList(f.exclude)
	}
	if set("ignore-domain") {
		cfg.Extract.IgnoreDomain = f.ignoreDomain
	}
	if set("skip-js") {
		cfg.Extract.SkipJS = f.skipJS
	}
	if set("skip-php") {
		cfg.Extract.SkipPHP = f.skipPHP
	}
	if set("skip-block-json") {
		cfg.Extract.SkipBlockJSON = f.skipBlockJSON
	}
	if set("skip-theme-json") {
		cfg.Extract.SkipThemeJSON = f.skipThemeJSON
	}
	if set("no-location") {
		cfg.Output.Location = !f.noLocation
	}
	if set("allow-syntax-errors") {
		cfg.Extract.AllowSyntaxErrors = f.allowSyntaxErrors
	}
	if set("workers") {
		cfg.Extract.Workers = f.workers
	}
	if set("cache") {
		cfg.Cache.Path = f.cache
	}
	if set("json") {
		cfg.Output.JSON = f.json
	}
	if set("silent") {
		cfg.Log.Silent = f.silent
	}
	if set("debug") {
		cfg.Log.Debug = f.debug
	}
}

func setupLogging(cfg *config.Config) {
	switch {
	case cfg.Log.Silent:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case cfg.Log.Debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func runExtract(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []pipeline.Option
	var bar *progressbar.ProgressBar
	if !cfg.Log.Silent {
		opts = append(opts, pipeline.WithProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("[cyan]Extracting[reset]"),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}))
	}

	res, err := pipeline.New(cfg, opts...).Run(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	dest := destination(cfg, res.Project)
	if err := writeCatalog(dest, res.File(), cfg.Output.Location, cfg.Output.JSON); err != nil {
		return err
	}
	for _, sub := range res.Subtrahends {
		isJSON := strings.EqualFold(filepath.Ext(sub.Path), ".json")
		if err := writeCatalog(sub.Path, sub.File, cfg.Output.Location, isJSON); err != nil {
			return err
		}
		log.Info().Str("file", sub.Path).Msg("Updated subtract catalog")
	}

	if cfg.Log.Silent {
		return nil
	}
	if warnings := multierr.Errors(res.Warnings); len(warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%s %d file(s) or catalog(s) were skipped\n", yellow("Warning:"), len(warnings))
	}
	if n := len(res.Conflicts); n > 0 {
		fmt.Fprintf(os.Stderr, "%s %d string(s) have conflicting plural forms\n", yellow("Warning:"), n)
	}
	fmt.Printf("%s Wrote %d strings from %d files to %s\n", green("Success:"), res.Stats.Entries, res.Stats.Files, dest)
	return nil
}

// destination resolves the output path, defaulting to
// <source>/languages/<slug>.pot.
func destination(cfg *config.Config, project *pipeline.Project) string {
	if cfg.Output.Destination != "" {
		return cfg.Output.Destination
	}
	ext := ".pot"
	if cfg.Output.JSON {
		ext = ".json"
	}
	return filepath.Join(cfg.Project.Root, "languages", project.Slug+ext)
}

func writeCatalog(path string, f *pofile.File, location, asJSON bool) error {
	opts := pofile.WriteOptions{Location: location}
	if !asJSON {
		return pofile.WriteFile(path, f, opts)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := pofile.WriteJSON(out, f, opts); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the extraction cache",
	}
	var path string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached extraction result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := config.LoadConfig(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				path = cfg.Cache.Path
			}
			if path == "" {
				return fmt.Errorf("no cache configured; pass --cache or set cache.path")
			}

			store, err := storage.NewSQLiteStore(path)
			if err != nil {
				return fmt.Errorf("failed to open cache: %w", err)
			}
			defer store.Close()

			n, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("%s Removed %d cached files from %s\n", green("Success:"), n, path)
			return nil
		},
	}
	clearCmd.Flags().StringVar(&path, "cache", "", "SQLite cache database")
	cmd.AddCommand(clearCmd)
	return cmd
}
