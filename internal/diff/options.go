package diff

import "time"

// Algorithm selects the diff implementation.
type Algorithm string

const (
	// AlgorithmMyers is the exact O(ND) Myers diff.
	AlgorithmMyers Algorithm = "myers"

	// AlgorithmDMP is the diff-match-patch line mode, bounded by a timeout.
	AlgorithmDMP Algorithm = "dmp"
)

// Default limits for diff computation.
const (
	// DefaultContextLines is the number of unchanged lines kept visible
	// around each change when folding.
	DefaultContextLines = 3

	// DefaultMaxDiffLines is the largest side Myers runs on directly.
	DefaultMaxDiffLines = 20000

	// DefaultMaxDiffMemoryMB bounds the memory the Myers trace may hold.
	DefaultMaxDiffMemoryMB = 100

	// DefaultTimeout bounds the diff-match-patch fallback.
	DefaultTimeout = 2 * time.Second

	// DefaultCheckInterval is the number of Myers steps between staleness polls.
	DefaultCheckInterval = 1024
)

// Options configures diff computation.
type Options struct {
	// ContextLines is the number of unchanged lines kept around each change
	// when computing Skip folds. Default is 3.
	ContextLines int

	// Algorithm selects the implementation. Default is AlgorithmMyers.
	Algorithm Algorithm

	// MaxLines limits the side length Myers runs on; longer inputs use
	// diff-match-patch. Negative disables the limit.
	MaxLines int

	// MaxMemoryMB limits the saved Myers trace; inputs that outgrow it use
	// diff-match-patch. Negative disables the limit.
	MaxMemoryMB int

	// Timeout bounds the diff-match-patch computation.
	Timeout time.Duration

	// CheckInterval is how many steps pass between calls to Stale.
	CheckInterval int

	// Stale, if set, is polled during computation. Returning true abandons
	// the computation and Compute reports no result.
	Stale func() bool
}

// DefaultOptions returns default diff options.
func DefaultOptions() Options {
	return Options{
		ContextLines:  DefaultContextLines,
		Algorithm:     AlgorithmMyers,
		MaxLines:      DefaultMaxDiffLines,
		MaxMemoryMB:   DefaultMaxDiffMemoryMB,
		Timeout:       DefaultTimeout,
		CheckInterval: DefaultCheckInterval,
	}
}

// withDefaults fills zero fields.
func (o Options) withDefaults() Options {
	if o.ContextLines < 0 {
		o.ContextLines = 0
	}
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmMyers
	}
	if o.MaxLines == 0 {
		o.MaxLines = DefaultMaxDiffLines
	}
	if o.MaxMemoryMB == 0 {
		o.MaxMemoryMB = DefaultMaxDiffMemoryMB
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = DefaultCheckInterval
	}
	return o
}

// stale polls the Stale callback.
func (o Options) stale() bool {
	return o.Stale != nil && o.Stale()
}
