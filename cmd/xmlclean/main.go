package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/younessemlali/gerflor-xml-cleaner/internal/archive"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/batch"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/check"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/config"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/discover"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/logging"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/scrub"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/watch"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "clean":
		runClean(os.Args[2:])

	case "check":
		runCheck(os.Args[2:])

	case "watch":
		runWatch(os.Args[2:])

	case "version":
		fmt.Printf("xmlclean v%s (gerflor-xml-cleaner)\n", version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func runClean(args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file")
	outDir := fs.String("out", "", "output directory (default: config output.dir)")
	zipOut := fs.Bool("zip", false, "bundle cleaned files into one zip archive")
	tags := fs.String("tags", "", "comma-separated tag names to clear (overrides config)")
	workers := fs.Int("workers", 1, "documents processed concurrently")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fatal("usage: xmlclean clean [flags] <file|dir>...")
	}

	cfg, scrubber := setup(*cfgPath, *tags, *verbose)
	dir := cfg.Output.Dir
	if *outDir != "" {
		dir = *outDir
	}

	paths, err := discover.Expand(fs.Args())
	if err != nil {
		fatal("%v", err)
	}
	if len(paths) == 0 {
		fatal("no xml files found")
	}

	docs := make([]batch.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			fatal("read %s: %v", p, err)
		}
		docs = append(docs, batch.Document{Name: filepath.Base(p), Data: data})
	}

	opts := []batch.Option{batch.Workers(*workers)}
	var bar *progressbar.ProgressBar
	if len(docs) > 1 && !*verbose {
		bar = progressbar.Default(int64(len(docs)), "cleaning")
		opts = append(opts, batch.Progress(func(done, total int) {
			_ = bar.Set(done)
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runID := uuid.NewString()
	start := time.Now()
	results := batch.New(scrubber, opts...).Process(ctx, docs)
	if bar != nil {
		_ = bar.Finish()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal("create output dir: %v", err)
	}

	var bundle string
	if *zipOut {
		bundle = filepath.Join(dir, archive.BundleName(cfg.Archive.Prefix, time.Now()))
		f, err := os.Create(bundle)
		if err != nil {
			fatal("create archive: %v", err)
		}
		if err := archive.WriteZip(f, results, cfg.Output.Suffix); err != nil {
			f.Close()
			fatal("write archive: %v", err)
		}
		if err := f.Close(); err != nil {
			fatal("close archive: %v", err)
		}
	}

	for _, res := range results {
		if !res.Cleaned() {
			fmt.Printf("failed: %s: %v\n", res.Name, res.Err)
			continue
		}
		if *zipOut {
			fmt.Printf("cleaned: %s (%d modifications)\n", res.Name, res.Modifications)
			continue
		}
		out := filepath.Join(dir, archive.CleanedName(res.Name, cfg.Output.Suffix))
		if err := os.WriteFile(out, res.Data, 0o644); err != nil {
			fatal("write %s: %v", out, err)
		}
		fmt.Printf("cleaned: %s -> %s (%d modifications)\n", res.Name, out, res.Modifications)
	}

	s := batch.Summarize(results)
	slog.Info("batch complete",
		"run_id", runID,
		"total", s.Total,
		"cleaned", s.Cleaned,
		"failed", s.Failed,
		"modifications", s.Modifications,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if *zipOut {
		fmt.Printf("bundled: %s (%d files)\n", bundle, s.Cleaned)
	}
	fmt.Printf("%d cleaned, %d failed, %d modifications\n", s.Cleaned, s.Failed, s.Modifications)

	if s.Failed > 0 {
		os.Exit(1)
	}
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file")
	tags := fs.String("tags", "", "comma-separated tag names to check (overrides config)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fatal("usage: xmlclean check [flags] <file|dir>...")
	}

	_, scrubber := setup(*cfgPath, *tags, *verbose)

	paths, err := discover.Expand(fs.Args())
	if err != nil {
		fatal("%v", err)
	}

	report := check.Run(scrubber, paths)
	fmt.Print(report.Format())
	if report.HasFailures() {
		os.Exit(1)
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file")
	outDir := fs.String("out", "", "output directory (default: config output.dir)")
	tags := fs.String("tags", "", "comma-separated tag names to clear (overrides config)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fatal("usage: xmlclean watch [flags] <dir>")
	}

	cfg, scrubber := setup(*cfgPath, *tags, *verbose)
	dir := cfg.Output.Dir
	if *outDir != "" {
		dir = *outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := watch.Run(ctx, scrubber, watch.Options{
		Dir:      fs.Arg(0),
		OutDir:   dir,
		Suffix:   cfg.Output.Suffix,
		Debounce: cfg.Watch.Debounce(),
	})
	if err != nil {
		fatal("watch: %v", err)
	}
}

// setup loads config, initializes logging, and builds the scrubber.
func setup(cfgPath, tags string, verbose bool) (config.Config, *scrub.Scrubber) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal("load config: %v", err)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	logging.Init(level)

	targets := cfg.TargetTags
	if tags != "" {
		targets = nil
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				targets = append(targets, t)
			}
		}
		if len(targets) == 0 {
			fatal("--tags must name at least one tag")
		}
	}

	return cfg, scrub.New(targets)
}

func usage() {
	fmt.Fprintf(os.Stderr, `xmlclean v%s — blank Code/Description text in GERFLOR XML exports

Usage:
  xmlclean clean [flags] <file|dir>...   Clean files, write *_cleaned.xml (or --zip one bundle)
  xmlclean check [flags] <file|dir>...   Report what a clean run would change, write nothing
  xmlclean watch [flags] <dir>           Clean xml files as they appear in a directory
  xmlclean version                       Print version
  xmlclean help                          Show this help

Common flags:
  --config <path>   Config file (default: ~/.config/xmlclean/config.toml)
  --tags <a,b>      Override the tag names to clear
  --out <dir>       Output directory
  --zip             Bundle cleaned files into a single zip (clean only)
  --workers <n>     Process documents concurrently (clean only)
`, version)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "xmlclean: "+format+"\n", args...)
	os.Exit(1)
}
