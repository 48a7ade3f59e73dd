// Package parallel provides the worker pool used by the parallel evaluation
// strategies.
package parallel

import (
	"runtime"
)

// Config controls parallel execution behavior of For.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of workers, the calling goroutine included.
	MinChunkSize int  // Minimum items per worker to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// For executes f(i) for i in [0, n) on the shared pool for cfg.NumWorkers.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	workers := min(cfg.NumWorkers, max(n/max(cfg.MinChunkSize, 1), 1))
	Shared(workers).Run(n, func(first, last int) {
		for i := first; i < last; i++ {
			f(i)
		}
	})
}
