package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into input, cache, concurrency, reporting, and display.
// Negated flags (e.g. --no-cache) are applied after Parse so Config defaults
// hold unless the user sets them.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, missing --script).
// The version parameter is passed from main so the help text reflects the
// build-time version.
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("scenecast", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that defaults from DefaultConfig() hold unless the user passes the flag.
	var negated negatedFlags

	defineInputFlags(fs, cfg)
	defineCacheFlags(fs, cfg, &negated)
	defineConcurrencyFlags(fs, cfg)
	defineReportingFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "scenecast v"+version)
		os.Exit(0)
	}

	return validatePositional(cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noCache -> NoCache=true) or trigger
// exit (showHelp, showVersion).
type negatedFlags struct {
	noCache        bool
	cacheRefresh   bool
	noTimeline     bool
	noSubtitleFile bool
	forceColor     bool
	noColor        bool
	showVersion    bool
	showHelp       bool
}

// defineInputFlags registers --script, --defaults, --output.
func defineInputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ScriptPath, "script", "", "Path to the screenplay YAML script (required)")
	fs.StringVar(&cfg.ScriptPath, "s", "", "Same as --script")
	fs.StringVar(&cfg.DefaultsPath, "defaults", "", "Path to a defaults YAML file merged under the script")
	fs.StringVar(&cfg.OutputPath, "output", "out.mp4", "Output MP4 path")
	fs.StringVar(&cfg.OutputPath, "o", "out.mp4", "Same as --output")
}

// defineCacheFlags registers --cache-dir, --no-cache, --cache-refresh.
func defineCacheFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "Artifact cache directory")
	fs.BoolVar(&n.noCache, "no-cache", false, "Bypass the artifact cache entirely")
	fs.BoolVar(&n.cacheRefresh, "cache-refresh", false, "Ignore cache hits but still write fresh entries")
}

// defineConcurrencyFlags registers --jobs.
func defineConcurrencyFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Jobs, "jobs", 0, "Job count (must be >= 0; not used by the renderer, whose clip concurrency comes from defaults.clip_workers)")
	fs.IntVar(&cfg.Jobs, "j", 0, "Same as --jobs")
}

// defineReportingFlags registers --timeline, --no-timeline, --subtitle-file,
// --no-subtitle-file.
func defineReportingFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.Var(&timelineFormatValue{&cfg.Timeline}, "timeline", "Timeline report format: md | csv | both")
	fs.BoolVar(&n.noTimeline, "no-timeline", false, "Skip timeline report generation")
	fs.Var(&subtitleFileFormatValue{&cfg.SubtitleFile}, "subtitle-file", "Subtitle file format: srt | ass | both")
	fs.BoolVar(&n.noSubtitleFile, "no-subtitle-file", false, "Skip standalone subtitle file generation")
}

// defineDisplayFlags registers color, verbose, log, and log-json flags.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose (debug-level) output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "Emit structured JSON logs instead of text")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
	fs.BoolVar(&cfg.FinalCopyOnly, "final-copy-only", false, "Fail the finalize phase instead of re-encoding when scene clips cannot be stream-copied")
}

// defineUtilityFlags registers --version and --help (both cause exit after
// printing).
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg (e.g.
// noCache -> NoCache=true).
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noCache {
		cfg.NoCache = true
	}
	if n.cacheRefresh {
		cfg.CacheRefresh = true
	}
	if n.noTimeline {
		cfg.NoTimeline = true
	}
	if n.noSubtitleFile {
		cfg.NoSubtitleFile = true
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// validatePositional checks the flags that ParseFlags alone can validate
// without the screenplay having been loaded yet (full Validate runs later,
// after Load merges the YAML).
func validatePositional(cfg *Config) error {
	if cfg.ScriptPath == "" {
		return fmt.Errorf("need --script <path>")
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("--jobs must not be negative")
	}
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(_ *flag.FlagSet, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "scenecast v" + version + " — declarative screenplay renderer"},
		{"", ""},
		{"  scenecast --script <path> [OPTIONS]", ""},
		{"", ""},
		{"Input", ""},
		{"  -s, --script <path>", "Screenplay YAML script (required)"},
		{"  --defaults <path>", "Defaults YAML merged under the script"},
		{"  -o, --output <path>", "Output MP4 path (default: out.mp4)"},
		{"", ""},
		{"Cache", ""},
		{"  --cache-dir <path>", "Artifact cache directory (default: .scenecast-cache)"},
		{"  --no-cache", "Bypass the artifact cache entirely"},
		{"  --cache-refresh", "Ignore cache hits but still write fresh entries"},
		{"", ""},
		{"Concurrency", ""},
		{"  -j, --jobs <n>", "Job count, >= 0 (not used by the renderer)"},
		{"", ""},
		{"Reporting", ""},
		{"  --timeline <md|csv|both>", "Timeline report format (default: both)"},
		{"  --no-timeline", "Skip timeline report generation"},
		{"  --subtitle-file <srt|ass|both>", "Subtitle file format (default: srt)"},
		{"  --no-subtitle-file", "Skip standalone subtitle file generation"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose (debug-level) output"},
		{"  --log-json", "Emit structured JSON logs instead of text"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  --final-copy-only", "Fail instead of re-encoding if clips can't be stream-copied"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use enum types with flag.Var.

type timelineFormatValue struct{ p *TimelineFormat }

func (v *timelineFormatValue) String() string { return string(*v.p) }
func (v *timelineFormatValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "md":
		*v.p = TimelineMD
	case "csv":
		*v.p = TimelineCSV
	case "both":
		*v.p = TimelineBoth
	default:
		return fmt.Errorf("invalid timeline format %q (use 'md', 'csv', or 'both')", s)
	}
	return nil
}

type subtitleFileFormatValue struct{ p *SubtitleFileFormat }

func (v *subtitleFileFormatValue) String() string { return string(*v.p) }
func (v *subtitleFileFormatValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "srt":
		*v.p = SubtitleFileSRT
	case "ass":
		*v.p = SubtitleFileASS
	case "both":
		*v.p = SubtitleFileBoth
	default:
		return fmt.Errorf("invalid subtitle file format %q (use 'srt', 'ass', or 'both')", s)
	}
	return nil
}
