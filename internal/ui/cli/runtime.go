package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	coreapp "rbgraph/internal/core/app"
	"rbgraph/internal/core/config"
	"rbgraph/internal/core/ports"
	"rbgraph/internal/data/history"
	"rbgraph/internal/shared/observability"
)

// Run executes the CLI and returns the process exit code: 0 on success,
// 1 on runtime failure and 2 on invalid flags.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if len(opts.args) > 1 {
		fmt.Fprintf(stderr, "expected at most one project root, got %d arguments\n", len(opts.args))
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "rbgraph v%s\n", versionString)
		return 0
	}

	since, err := parseSince(opts.since)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}
	window, err := parseHistoryWindow(opts.historyWindow)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	cleanupLogs := configureLogging(stderr, "", opts.verbose)
	defer func() { cleanupLogs() }()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}
	explicitRoot := ""
	if len(opts.args) == 1 {
		explicitRoot = opts.args[0]
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd, explicitRoot)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	applyModeOptions(opts, cfg)

	paths, err := config.ResolvePaths(cfg, cwd, explicitRoot)
	if err != nil {
		slog.Error("failed to resolve runtime paths", "error", err)
		return 1
	}

	if opts.ui {
		cleanupLogs()
		cleanupLogs = configureLogging(stderr, filepath.Join(paths.StateDir, "rbgraph.log"), opts.verbose)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	application, err := coreapp.New(cfg, paths)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			slog.Warn("failed to close app", "error", err)
		}
	}()
	if err := application.ConnectGraphStore(ctx); err != nil {
		slog.Error("graph store setup failed", "error", err)
		return 1
	}

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(application))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	svc := application.AnalysisService()
	report, err := svc.RunAnalysis(ctx)
	if err != nil {
		slog.Error("initial analysis failed", "error", err)
		return 1
	}
	if !opts.ui {
		coreapp.PrintSummary(stdout, report)
	}

	var trend *history.TrendReport
	if opts.history {
		tr, err := svc.HistoryTrend(ctx, ports.HistoryTrendRequest{Since: since, Window: window})
		if err != nil {
			slog.Error("history mode failed", "error", err)
			return 1
		}
		trend = &tr
		if !opts.ui {
			printTrendTable(stdout, tr)
		}
	}

	if opts.once {
		return 0
	}

	if cfg.Watch.ReloadConfigOnChange && cfgPath != "" {
		cw := config.NewWatcher(cfgPath, func(next *config.Config) {
			applyModeOptions(opts, next)
			if err := application.ApplyConfig(ctx, next); err != nil {
				slog.Error("failed to apply reloaded config", "error", err)
			}
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config reload disabled", "path", cfgPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	if opts.ui {
		if err := runUI(ctx, svc, trend); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	if err := svc.Watch(ctx, func(r ports.AnalysisReport) { coreapp.PrintSummary(stdout, r) }); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}
	<-ctx.Done()
	slog.Info("shutting down")
	return 0
}

// loadConfig reads an explicit --config path, or the default file in the
// project root. A missing default file yields the built-in defaults.
func loadConfig(path, cwd, explicitRoot string) (*config.Config, string, error) {
	if strings.TrimSpace(path) != "" {
		resolved := config.ResolveRelative(cwd, path)
		cfg, err := config.Load(resolved)
		if err != nil {
			return nil, "", err
		}
		return cfg, resolved, nil
	}

	base := cwd
	if strings.TrimSpace(explicitRoot) != "" {
		base = config.ResolveRelative(cwd, explicitRoot)
	} else if root, err := config.DetectProjectRoot([]string{cwd}); err == nil {
		base = root
	}

	candidate := filepath.Join(base, config.DefaultFile)
	cfg, err := config.Load(candidate)
	if err == nil {
		return cfg, candidate, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", candidate)
		return config.Default(), "", nil
	}
	return nil, "", err
}

func applyModeOptions(opts cliOptions, cfg *config.Config) {
	if opts.includeTests {
		cfg.Scan.IncludeTests = true
	}
	if opts.history {
		cfg.DB.Enabled = true
	}
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--history-window must be a Go duration (example: 24h), got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--history-window must be > 0, got %q", value)
	}
	return d, nil
}

func printTrendTable(w io.Writer, report history.TrendReport) {
	fmt.Fprintf(w, "History for %s: %d scans (window %s)\n", report.ProjectKey, report.ScanCount, report.Window)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tFILES\tNAMESPACES\tREFERENCES\tDANGLING\tΔREFS\tGROWTH%\tAVG REFS")
	for _, p := range report.Points {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%+d\t%.2f\t%.2f\n",
			p.Timestamp.Format(time.RFC3339),
			p.FileCount,
			p.NamespaceCount,
			p.ReferenceCount,
			p.DanglingCount,
			p.DeltaReferences,
			p.ReferenceGrowth,
			p.AvgReferences,
		)
	}
	_ = tw.Flush()
}

// configureLogging installs the default slog text handler. With a log
// path, output goes to that file so the terminal UI stays intact.
func configureLogging(fallback io.Writer, logPath string, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := fallback
	closeFn := func() {}
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(fallback, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(fallback, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(fallback, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}
