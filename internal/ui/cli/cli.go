// Package cli implements the rbgraph command line and terminal UI.
package cli

import (
	"flag"
	"io"
)

const versionString = "0.3.0"

type cliOptions struct {
	configPath    string
	once          bool
	ui            bool
	history       bool
	since         string
	historyWindow string
	includeTests  bool
	verbose       bool
	version       bool
	args          []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("rbgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		io.WriteString(stderr, "Usage: rbgraph [flags] [project-root]\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: <project-root>/rbgraph.toml when present)")
	fs.BoolVar(&opts.once, "once", false, "Run a single analysis and exit")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.BoolVar(&opts.history, "history", false, "Record history snapshots and print a trend report")
	fs.StringVar(&opts.since, "since", "", "Include historical snapshots at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyWindow, "history-window", "24h", "Moving-window duration for trend summaries (requires --history)")
	fs.BoolVar(&opts.includeTests, "include-tests", false, "Include spec and test files (_spec.rb, _test.rb)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
