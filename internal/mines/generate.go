package mines

import "math/rand/v2"

// New creates an all-hidden board with no mines.
func New(rows, cols int) Board {
	b := make(Board, rows)
	for i := range b {
		b[i] = make([]Cell, cols)
	}
	return b
}

// NewWithMines creates a board pre-seeded with mineCount mines at uniformly
// random distinct positions. A request larger than the grid is clamped to
// rows*cols. Pre-seeded mines carry the PrePlaced attribution.
func NewWithMines(rows, cols, mineCount int, r *rand.Rand) Board {
	b := New(rows, cols)
	if mineCount > rows*cols {
		mineCount = rows * cols
	}
	for _, p := range r.Perm(rows * cols)[:mineCount] {
		b[p/cols][p%cols].HasMine = true
		b[p/cols][p%cols].MinePlacedBy = PrePlaced
	}
	b.recomputeAdjacency()
	return b
}
