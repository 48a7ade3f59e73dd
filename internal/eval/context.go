package eval

import (
	"runtime"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"

	"github.com/born-ml/etl/internal/parallel"
	"github.com/born-ml/etl/internal/simd"
)

// DefaultThreshold is the default minimum element count for parallel evaluation.
const DefaultThreshold = 16384

// DefaultSettings returns sensible defaults based on CPU count.
func DefaultSettings() Settings {
	return Settings{
		Threshold: DefaultThreshold,
		Workers:   runtime.NumCPU(),
		Vectorize: true,
		Unroll:    true,
	}
}

// Stats counts what a Context did. All counters are safe for concurrent use.
type Stats struct {
	strategies  [numStrategies]atomic.Int64
	temporaries atomic.Int64
	aliases     atomic.Int64
	bypasses    atomic.Int64
}

// Strategy returns how many evaluations ran with strategy s.
func (s *Stats) Strategy(st Strategy) int64 {
	return s.strategies[st].Load()
}

// Temporaries returns how many buffers were materialized, nested temporaries
// and alias resolutions included.
func (s *Stats) Temporaries() int64 {
	return s.temporaries.Load()
}

// AliasResolutions returns how many evaluations went through a temporary
// because the source read the destination.
func (s *Stats) AliasResolutions() int64 {
	return s.aliases.Load()
}

// DirectEvaluations returns how many temporaries wrote a destination themselves.
func (s *Stats) DirectEvaluations() int64 {
	return s.bypasses.Load()
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	for i := range s.strategies {
		s.strategies[i].Store(0)
	}
	s.temporaries.Store(0)
	s.aliases.Store(0)
	s.bypasses.Store(0)
}

// Context carries the tunables, the register width and the worker pools used
// by evaluations. Tunables are read at the start of every call and may be
// changed concurrently.
type Context struct {
	threshold atomic.Int64
	workers   atomic.Int64
	vectorize atomic.Bool
	unroll    atomic.Bool

	isa    simd.ISA
	pool   func(workers int) *parallel.Pool
	logger klog.Logger
	stats  Stats
}

// Option configures a Context.
type Option func(*Context)

// WithSettings replaces every tunable.
func WithSettings(s Settings) Option {
	return func(c *Context) {
		c.SetSettings(s)
	}
}

// WithThreshold sets the minimum element count for parallel evaluation.
func WithThreshold(n int) Option {
	return func(c *Context) {
		c.SetThreshold(n)
	}
}

// WithWorkers sets the worker count.
func WithWorkers(n int) Option {
	return func(c *Context) {
		c.SetWorkers(n)
	}
}

// WithISA overrides the detected register width.
func WithISA(isa simd.ISA) Option {
	return func(c *Context) {
		c.isa = isa
	}
}

// WithPool overrides where parallel evaluations get their pool for a worker count.
func WithPool(pool func(workers int) *parallel.Pool) Option {
	return func(c *Context) {
		c.pool = pool
	}
}

// WithLogger sets the logger.
func WithLogger(logger klog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// NewContext returns a context with DefaultSettings, the detected ISA and
// the shared worker pools, modified by opts.
func NewContext(opts ...Option) *Context {
	c := &Context{
		isa:    simd.Detect(),
		pool:   parallel.Shared,
		logger: klog.Background().WithName("eval"),
	}
	c.SetSettings(DefaultSettings())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultOnce sync.Once
	defaultCtx  *Context
)

// Default returns the process-wide context, creating it on first use.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = NewContext()
	})
	return defaultCtx
}

// Settings returns a snapshot of the tunables.
func (c *Context) Settings() Settings {
	return Settings{
		Threshold: int(c.threshold.Load()),
		Workers:   int(c.workers.Load()),
		Vectorize: c.vectorize.Load(),
		Unroll:    c.unroll.Load(),
	}
}

// SetSettings replaces every tunable.
func (c *Context) SetSettings(s Settings) {
	c.SetThreshold(s.Threshold)
	c.SetWorkers(s.Workers)
	c.SetVectorize(s.Vectorize)
	c.SetUnroll(s.Unroll)
}

// SetThreshold sets the minimum element count for parallel evaluation.
func (c *Context) SetThreshold(n int) {
	c.threshold.Store(int64(n))
}

// SetWorkers sets the worker count, the calling goroutine included.
func (c *Context) SetWorkers(n int) {
	c.workers.Store(int64(n))
}

// SetVectorize enables or disables the vectorized strategies.
func (c *Context) SetVectorize(on bool) {
	c.vectorize.Store(on)
}

// SetUnroll enables or disables loop unrolling in the kernels.
func (c *Context) SetUnroll(on bool) {
	c.unroll.Store(on)
}

// ISA returns the register width used by the vectorized kernels.
func (c *Context) ISA() simd.ISA {
	return c.isa
}

// Stats returns the context counters.
func (c *Context) Stats() *Stats {
	return &c.stats
}
