// Package app wires the livediff components together and manages their
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dshills/livediff/internal/config"
	"github.com/dshills/livediff/internal/diffeditor"
	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/logging"
	"github.com/dshills/livediff/internal/metrics"
	"github.com/dshills/livediff/internal/reactive"
	"github.com/dshills/livediff/internal/session"
	"github.com/dshills/livediff/internal/worker"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. Ignored if Config is set.
	ConfigPath string

	// Config, if set, is used as is instead of loading ConfigPath.
	Config *config.Config

	// Logger overrides the logger built from the configuration.
	Logger *zap.Logger

	// History resolves history descriptors.
	History document.HistorySource
}

// Application owns the runtime, the worker pool and all open pairings.
type Application struct {
	mu sync.Mutex

	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Collector
	reg     *prometheus.Registry

	runtime   *reactive.Runtime
	root      *reactive.Scope
	pool      *worker.Pool
	documents *document.Manager
	pairings  *diffeditor.Registry
	session   *session.Store
	server    *http.Server

	running atomic.Bool
}

// New creates and starts an application.
func New(opts Options) (*Application, error) {
	app := &Application{}
	if err := app.bootstrap(opts); err != nil {
		app.shutdown(context.Background())
		return nil, err
	}
	app.running.Store(true)
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap(opts Options) error {
	// 1. Config
	if opts.Config != nil {
		app.cfg = *opts.Config
		if err := app.cfg.Validate(); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	} else {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return &InitError{Component: "config", Err: err}
		}
		app.cfg = cfg
	}

	// 2. Logger
	if opts.Logger != nil {
		app.logger = opts.Logger
	} else {
		l, err := logging.New(app.cfg.Log)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		app.logger = l
	}

	// 3. Metrics
	if app.cfg.Metrics.Enabled {
		app.reg = prometheus.NewRegistry()
		app.metrics = metrics.New(app.reg, app.cfg.Metrics.Namespace)
		if app.cfg.Metrics.Addr != "" {
			app.serveMetrics(app.cfg.Metrics.Addr)
		}
	}

	// 4. Reactive runtime
	app.runtime = reactive.NewRuntime(reactive.WithLogger(app.logger.Named("runtime")))
	if err := app.runtime.Start(); err != nil {
		return &InitError{Component: "runtime", Err: err}
	}
	app.root = app.runtime.NewScope()

	// 5. Worker pool
	poolLog := app.logger.Named("worker")
	app.pool = worker.NewPool(
		worker.WithWorkers(app.cfg.Worker.Workers),
		worker.WithQueueSize(app.cfg.Worker.QueueSize),
		worker.WithPanicHandler(func(_ worker.Job, v any, stack []byte) {
			poolLog.Error("diff job panicked", zap.Any("panic", v), zap.ByteString("stack", stack))
		}),
	)
	if err := app.pool.Start(); err != nil {
		return &InitError{Component: "worker pool", Err: err}
	}

	// 6. Documents and pairings
	docOpts := []document.ManagerOption{document.WithLogger(app.logger.Named("document"))}
	if opts.History != nil {
		docOpts = append(docOpts, document.WithHistorySource(opts.History))
	}
	app.documents = document.NewManager(docOpts...)
	app.pairings = diffeditor.NewRegistry()

	// 7. Session
	if app.cfg.Session.Path != "" {
		app.session = session.NewStore(app.cfg.Session.Path)
	}

	app.logger.Debug("application started",
		zap.Int("workers", app.cfg.Worker.Workers),
		zap.Bool("metrics", app.cfg.Metrics.Enabled),
	)
	return nil
}

func (app *Application) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.reg, promhttp.HandlerOpts{}))
	app.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log := app.logger.Named("metrics")
	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
}

// OpenPair opens a pairing for info and registers it. extra options are
// applied after the application's own.
func (app *Application) OpenPair(ctx context.Context, info diffeditor.DiffEditorInfo, extra ...diffeditor.Option) (*diffeditor.DiffEditor, error) {
	if !app.running.Load() {
		return nil, ErrNotRunning
	}

	opts := append([]diffeditor.Option{
		diffeditor.WithDiffOptions(app.cfg.Diff.Options()),
		diffeditor.WithLogger(app.logger),
		diffeditor.WithMetrics(app.metrics),
	}, extra...)

	de, err := diffeditor.Open(ctx, app.root, app.documents, app.pool, info, opts...)
	if err != nil {
		return nil, fmt.Errorf("open pairing: %w", err)
	}
	if err := app.pairings.Insert(de); err != nil {
		de.Dispose()
		return nil, err
	}

	app.logger.Info("pairing opened",
		zap.Stringer("pairing", de.ID()),
		zap.Stringer("left", info.LeftContent),
		zap.Stringer("right", info.RightContent),
	)
	return de, nil
}

// ClosePair disposes a pairing.
func (app *Application) ClosePair(de *diffeditor.DiffEditor) error {
	return app.pairings.Remove(de.ID())
}

// RestoreSession reopens every pairing in the session file with the extra
// options. Pairings that fail to open are logged and skipped.
func (app *Application) RestoreSession(ctx context.Context, extra ...diffeditor.Option) (int, error) {
	if app.session == nil {
		return 0, ErrSessionDisabled
	}
	infos, err := app.session.Load()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, info := range infos {
		if _, err := app.OpenPair(ctx, info, extra...); err != nil {
			app.logger.Warn("skipping session pairing", zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
}

// SaveSession writes the open pairings to the session file.
func (app *Application) SaveSession() error {
	if app.session == nil {
		return ErrSessionDisabled
	}
	return app.session.Save(app.pairings.Infos())
}

// WatchFiles reloads open files when they change on disk until ctx is done.
func (app *Application) WatchFiles(ctx context.Context) error {
	return app.documents.WatchFiles(ctx)
}

// Shutdown saves the session, closes every pairing and stops the
// components in reverse initialization order.
func (app *Application) Shutdown(ctx context.Context) error {
	if !app.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}

	var errs []error
	if app.session != nil {
		if err := app.SaveSession(); err != nil {
			errs = append(errs, fmt.Errorf("save session: %w", err))
		}
	}
	errs = append(errs, app.shutdown(ctx)...)
	return errors.Join(errs...)
}

// shutdown stops whatever bootstrap managed to start.
func (app *Application) shutdown(ctx context.Context) []error {
	app.mu.Lock()
	defer app.mu.Unlock()

	var errs []error
	if app.pairings != nil {
		app.pairings.Close()
	}
	if app.root != nil {
		app.root.Dispose()
	}
	if app.pool != nil && app.pool.IsRunning() {
		if err := app.pool.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop worker pool: %w", err))
		}
	}
	if app.runtime != nil {
		if err := app.runtime.Stop(ctx); err != nil && !errors.Is(err, reactive.ErrNotRunning) {
			errs = append(errs, fmt.Errorf("stop runtime: %w", err))
		}
	}
	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop metrics server: %w", err))
		}
	}
	if app.logger != nil {
		_ = app.logger.Sync() // stderr cannot be synced on some platforms
	}
	return errs
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the effective configuration.
func (app *Application) Config() config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *zap.Logger {
	return app.logger
}

// Context returns ctx carrying the application logger.
func (app *Application) Context(ctx context.Context) context.Context {
	return logging.NewContext(ctx, app.logger)
}

// Runtime returns the reactive runtime.
func (app *Application) Runtime() *reactive.Runtime {
	return app.runtime
}

// Documents returns the document manager.
func (app *Application) Documents() *document.Manager {
	return app.documents
}

// Pairings returns the registry of open pairings.
func (app *Application) Pairings() *diffeditor.Registry {
	return app.pairings
}

// Pool returns the diff worker pool.
func (app *Application) Pool() *worker.Pool {
	return app.pool
}

// Gatherer returns the metrics registry, or nil when metrics are disabled.
func (app *Application) Gatherer() prometheus.Gatherer {
	if app.reg == nil {
		return nil
	}
	return app.reg
}
