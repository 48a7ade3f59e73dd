package parallel

// Tile is the half-open index range [First, Last) processed by one worker.
type Tile struct {
	First int
	Last  int
}

// Len returns the number of indices in the tile.
func (t Tile) Len() int {
	return t.Last - t.First
}

// Tiles splits [0, n) into one tile per worker. Every tile but the last holds
// n / workers indices; the last one absorbs the remainder.
// The tiles are disjoint and their union is exactly [0, n).
func Tiles(n, workers int) []Tile {
	workers = max(workers, 1)
	batch := n / workers

	tiles := make([]Tile, workers)
	for t := 0; t < workers-1; t++ {
		tiles[t] = Tile{First: t * batch, Last: (t + 1) * batch}
	}
	tiles[workers-1] = Tile{First: (workers - 1) * batch, Last: n}
	return tiles
}
