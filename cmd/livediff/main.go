// Package main is the entry point for livediff.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dshills/livediff/internal/app"
	"github.com/dshills/livediff/internal/config"
	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/diffeditor"
	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/logging"
	"github.com/dshills/livediff/internal/render"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes follow diff(1): 0 no differences, 1 differences, 2 trouble.
const (
	exitSame    = 0
	exitChanged = 1
	exitError   = 2
)

type options struct {
	configPath string
	ref        string
	print      bool
	once       bool
	watch      bool
	restore    bool
	context    int
	algorithm  string
	logLevel   string
	logFile    string
	args       []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, code, done := parseFlags(args, stdout, stderr)
	if done {
		return code
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	appOpts := app.Options{Config: &cfg, History: document.GitHistory{}}
	if !opts.print && cfg.Log.File == "" {
		// The terminal belongs to the viewer.
		appOpts.Logger = zap.NewNop()
	}
	application, err := app.New(appOpts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = application.Context(ctx)

	code = execute(ctx, application, opts, stdout, stderr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(stderr, "Error: shutdown: %v\n", err)
	}
	return code
}

func execute(ctx context.Context, application *app.Application, opts options, stdout, stderr io.Writer) int {
	log := logging.L(ctx)

	if opts.watch {
		go func() {
			if err := application.WatchFiles(ctx); err != nil {
				log.Warn("file watching disabled", zap.Error(err))
			}
		}()
	}

	var completions chan diffeditor.Completion
	var extra []diffeditor.Option
	if opts.print {
		completions = make(chan diffeditor.Completion, 16)
		extra = append(extra, diffeditor.WithGateHook(func(c diffeditor.Completion) {
			if c.Outcome != diffeditor.OutcomePublished {
				return
			}
			select {
			case completions <- c:
			default:
				log.Warn("printer is behind, dropping result")
			}
		}))
	}

	de, err := openPairing(ctx, application, opts, extra)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if opts.print {
		return printLoop(ctx, opts, completions, stdout, stderr)
	}
	return view(ctx, de, stderr)
}

// openPairing opens the pairing named on the command line, or restores the
// session and returns its first pairing.
func openPairing(ctx context.Context, application *app.Application, opts options, extra []diffeditor.Option) (*diffeditor.DiffEditor, error) {
	if opts.restore {
		if _, err := application.RestoreSession(ctx, extra...); err != nil {
			return nil, err
		}
		all := application.Pairings().All()
		if len(all) == 0 {
			return nil, errors.New("session has no pairings")
		}
		return all[0], nil
	}

	info, err := pairingInfo(opts)
	if err != nil {
		return nil, err
	}
	return application.OpenPair(ctx, info, extra...)
}

func pairingInfo(opts options) (diffeditor.DiffEditorInfo, error) {
	switch {
	case opts.ref != "" && len(opts.args) == 1:
		return diffeditor.DiffEditorInfo{
			LeftContent:  document.History(opts.args[0], opts.ref),
			RightContent: document.File(opts.args[0]),
		}, nil
	case opts.ref == "" && len(opts.args) == 2:
		return diffeditor.DiffEditorInfo{
			LeftContent:  document.File(opts.args[0]),
			RightContent: document.File(opts.args[1]),
		}, nil
	case opts.ref != "":
		return diffeditor.DiffEditorInfo{}, errors.New("--ref takes exactly one FILE")
	default:
		return diffeditor.DiffEditorInfo{}, errors.New("expected LEFT and RIGHT files")
	}
}

// printLoop writes a unified diff for every published result.
func printLoop(ctx context.Context, opts options, completions <-chan diffeditor.Completion, stdout, stderr io.Writer) int {
	for {
		select {
		case <-ctx.Done():
			return exitSame
		case c := <-completions:
			info := c.Pairing.Info()
			out, err := diff.Unified(c.Left.DiffLines(), c.Right.DiffLines(), c.Result, diff.UnifiedOptions{
				OrigName: info.LeftContent.String(),
				NewName:  info.RightContent.String(),
				Context:  opts.context,
			})
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return exitError
			}
			if _, err := stdout.Write(out); err != nil {
				return exitError
			}
			if opts.once {
				if c.Result.HasChanges() {
					return exitChanged
				}
				return exitSame
			}
		}
	}
}

// view runs the side-by-side terminal viewer until the user quits.
func view(ctx context.Context, de *diffeditor.DiffEditor, stderr io.Writer) int {
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create terminal: %v\n", err)
		return exitError
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize terminal: %v\n", err)
		return exitError
	}
	defer screen.Fini()

	v := render.NewViewer(screen, de.Left(), de.Right(), render.WithLogger(logging.L(ctx).Named("render")))
	if err := v.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitSame
}

func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.algorithm != "" {
		cfg.Diff.Algorithm = opts.algorithm
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	return cfg, cfg.Validate()
}

// parseFlags returns done when the command should exit with code.
func parseFlags(args []string, stdout, stderr io.Writer) (opts options, code int, done bool) {
	fs := pflag.NewFlagSet("livediff", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion bool
	fs.StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "Path to configuration file")
	fs.StringVarP(&opts.ref, "ref", "r", "", "Compare FILE as of this git revision against FILE")
	fs.BoolVarP(&opts.print, "print", "p", false, "Print a unified diff on every update instead of opening the viewer")
	fs.BoolVar(&opts.once, "once", false, "With --print, exit after the first diff (status 1 if files differ)")
	fs.BoolVar(&opts.watch, "watch", true, "Reload files when they change on disk")
	fs.BoolVar(&opts.restore, "restore", false, "Reopen the first pairing of the saved session")
	fs.IntVarP(&opts.context, "unified", "U", diff.DefaultContextLines, "Lines of context in printed diffs")
	fs.StringVar(&opts.algorithm, "algorithm", "", "Diff algorithm: myers or dmp")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	fs.BoolVarP(&showVersion, "version", "v", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "livediff - live side-by-side diff of two files\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  livediff [options] LEFT RIGHT\n")
		fmt.Fprintf(stderr, "  livediff [options] --ref REV FILE\n")
		fmt.Fprintf(stderr, "  livediff [options] --restore\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, exitSame, true
		}
		return opts, exitError, true
	}

	if showVersion {
		fmt.Fprintf(stdout, "livediff %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, exitSame, true
	}
	if opts.context < 0 {
		fmt.Fprintf(stderr, "Error: --unified must not be negative\n")
		return opts, exitError, true
	}
	opts.args = fs.Args()
	return opts, 0, false
}

// defaultConfigPath is $XDG_CONFIG_HOME/livediff/config.toml when the
// user config directory is known.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "livediff", "config.toml")
}
