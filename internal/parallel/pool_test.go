package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiles_Cover(t *testing.T) {
	for workers := 1; workers <= 8; workers++ {
		for n := 0; n <= 4*16*workers+3; n++ {
			tiles := Tiles(n, workers)
			require.Len(t, tiles, workers)

			next := 0
			for i, tile := range tiles {
				require.Equal(t, next, tile.First, "n=%d workers=%d tile=%d", n, workers, i)
				require.LessOrEqual(t, tile.First, tile.Last)
				if i < workers-1 {
					require.Equal(t, n/workers, tile.Len())
				}
				next = tile.Last
			}
			require.Equal(t, n, next, "n=%d workers=%d", n, workers)
		}
	}
}

func TestTiles_Remainder(t *testing.T) {
	tiles := Tiles(10, 3)
	assert.Equal(t, []Tile{{0, 3}, {3, 6}, {6, 10}}, tiles)

	tiles = Tiles(2, 4)
	assert.Equal(t, []Tile{{0, 0}, {0, 0}, {0, 0}, {0, 2}}, tiles)
}

func TestTiles_NonPositiveWorkers(t *testing.T) {
	assert.Equal(t, []Tile{{0, 5}}, Tiles(5, 0))
}

func TestPool_RunVisitsEachIndexOnce(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	for _, n := range []int{0, 1, 3, 4, 5, 1000, 1027} {
		hits := make([]int32, n)
		p.Run(n, func(first, last int) {
			for i := first; i < last; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.Equal(t, int32(1), h, "n=%d index=%d", n, i)
		}
	}
}

func TestPool_SingleWorkerRunsOnCaller(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	assert.Equal(t, 1, p.Workers())
	var calls int
	p.Run(10, func(first, last int) {
		calls++
		assert.Equal(t, 0, first)
		assert.Equal(t, 10, last)
	})
	assert.Equal(t, 1, calls)
}

func TestPool_ConcurrentRuns(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	var wg sync.WaitGroup
	var total int64
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(300, func(first, last int) {
				atomic.AddInt64(&total, int64(last-first))
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(8*300), total)
}

func TestShared(t *testing.T) {
	a := Shared(3)
	b := Shared(3)
	assert.Same(t, a, b)
	assert.Equal(t, 3, a.Workers())
	assert.NotSame(t, a, Shared(2))

	Shutdown()
	c := Shared(3)
	assert.NotSame(t, a, c)
	Shutdown()
}

func TestPool_CloseIdempotent(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()
}
