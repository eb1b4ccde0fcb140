package diffeditor

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/metrics"
	"github.com/dshills/livediff/internal/worker"
)

// Submitter accepts diff jobs without blocking. *worker.Pool satisfies it.
type Submitter interface {
	Submit(ctx context.Context, job worker.Job) error
}

// config holds the settings shared by a pairing and its copies.
type config struct {
	tabID   uuid.UUID
	opts    diff.Options
	logger  *zap.Logger
	metrics *metrics.Collector
	onGate  func(Completion)
}

// Option configures a DiffEditor.
type Option func(*config)

// WithTabID places the pairing in an existing tab.
func WithTabID(id uuid.UUID) Option {
	return func(c *config) {
		c.tabID = id
	}
}

// WithDiffOptions sets the options passed to diff.Compute. Stale is
// always replaced by the pairing's own check.
func WithDiffOptions(opts diff.Options) Option {
	return func(c *config) {
		c.opts = opts
	}
}

// WithLogger sets the pairing's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records job outcomes in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithGateHook calls fn on the runtime after every gate decision except
// for disposed pairings. fn must not block.
func WithGateHook(fn func(Completion)) Option {
	return func(c *config) {
		c.onGate = fn
	}
}

func newConfig(opts []Option) config {
	c := config{
		tabID:  uuid.New(),
		opts:   diff.DefaultOptions(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
