package parallel

import (
	"sync"
)

type task struct {
	tile Tile
	fn   func(first, last int)
	done *sync.WaitGroup
}

// Pool runs tiles on workers-1 background goroutines plus the calling
// goroutine. A Pool is created once and reused; it is safe for concurrent
// use, each Run waiting only for its own tiles.
//
// Kernels run by a Pool must not panic: a panicking worker terminates the
// process.
type Pool struct {
	workers int
	tasks   chan task
	running sync.WaitGroup
	close   sync.Once
}

// NewPool starts a pool of workers workers, the caller of Run counting as one.
func NewPool(workers int) *Pool {
	workers = max(workers, 1)
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers),
	}
	for i := 0; i < workers-1; i++ {
		p.running.Add(1)
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.running.Done()
	for t := range p.tasks {
		t.fn(t.tile.First, t.tile.Last)
		t.done.Done()
	}
}

// Workers returns the number of workers, the caller included.
func (p *Pool) Workers() int {
	return p.workers
}

// Run splits [0, n) with Tiles, dispatches all tiles but the last to the
// background workers, processes the last one on the calling goroutine and
// returns once every tile has completed.
func (p *Pool) Run(n int, fn func(first, last int)) {
	tiles := Tiles(n, p.workers)
	last := tiles[len(tiles)-1]

	var done sync.WaitGroup
	done.Add(len(tiles) - 1)
	for _, t := range tiles[:len(tiles)-1] {
		p.tasks <- task{tile: t, fn: fn, done: &done}
	}

	fn(last.First, last.Last)
	done.Wait()
}

// Close stops the background workers. Run must not be called afterwards.
func (p *Pool) Close() {
	p.close.Do(func() {
		close(p.tasks)
		p.running.Wait()
	})
}

type lazyPool struct {
	once sync.Once
	pool *Pool
}

// shared holds one lazily started pool per worker count for the life of the process.
var shared sync.Map // int -> *lazyPool

// Shared returns the process-wide pool with the given number of workers,
// starting it on first use.
func Shared(workers int) *Pool {
	workers = max(workers, 1)
	v, _ := shared.LoadOrStore(workers, &lazyPool{})
	lp := v.(*lazyPool)
	lp.once.Do(func() {
		lp.pool = NewPool(workers)
	})
	return lp.pool
}

// Shutdown stops every shared pool. Later calls to Shared start fresh pools.
func Shutdown() {
	shared.Range(func(key, v any) bool {
		shared.Delete(key)
		lp := v.(*lazyPool)
		lp.once.Do(func() {})
		if lp.pool != nil {
			lp.pool.Close()
		}
		return true
	})
}
