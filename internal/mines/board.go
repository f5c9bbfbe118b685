package mines

// Player identifies who placed a mine or flag, or whose turn it is.
// The empty string means "nobody" (no mine attribution, no flag owner).
type Player string

const (
	NoPlayer  Player = ""
	Player1   Player = "player1"
	Player2   Player = "player2"
	PrePlaced Player = "preplaced"
)

// Opponent is only meaningful for Player1 and Player2; any other value
// returns NoPlayer.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return NoPlayer
}

type Cell struct {
	HasMine       bool   `json:"hasMine"`
	MinePlacedBy  Player `json:"minePlacedBy,omitempty"`
	Revealed      bool   `json:"revealed"`
	Flagged       bool   `json:"flagged"`
	FlagPlacedBy  Player `json:"flagPlacedBy,omitempty"`
	AdjacentMines int    `json:"adjacentMines"`
}

// Board is a rectangular grid of cells addressed by zero-based (row, col).
// Boards are treated as immutable snapshots: every operation in this
// package copies its input and returns a new board, so concurrent readers
// holding a previous snapshot never observe a partial update.
type Board [][]Cell

func (b Board) Dimensions() (rows, cols int) {
	rows = len(b)
	if rows > 0 {
		cols = len(b[0])
	}
	return rows, cols
}

func (b Board) InBounds(row, col int) bool {
	rows, cols := b.Dimensions()
	return row >= 0 && row < rows && col >= 0 && col < cols
}

func (b Board) Clone() Board {
	next := make(Board, len(b))
	for i, row := range b {
		next[i] = make([]Cell, len(row))
		copy(next[i], row)
	}
	return next
}

// CountAdjacentMines recounts the mined cells among the 8 neighbors of
// (row, col). It is the source of truth the AdjacentMines field must agree
// with at all times.
func (b Board) CountAdjacentMines(row, col int) int {
	n := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if b.InBounds(r, c) && b[r][c].HasMine {
				n++
			}
		}
	}
	return n
}

func (b Board) CountTotalMines() int {
	n := 0
	for _, row := range b {
		for _, cell := range row {
			if cell.HasMine {
				n++
			}
		}
	}
	return n
}

func (b Board) CountMinesBy(placer Player) int {
	n := 0
	for _, row := range b {
		for _, cell := range row {
			if cell.HasMine && cell.MinePlacedBy == placer {
				n++
			}
		}
	}
	return n
}

// recomputeAdjacency refreshes AdjacentMines for every cell. Called in
// place on freshly cloned boards only.
func (b Board) recomputeAdjacency() {
	for r := range b {
		for c := range b[r] {
			b[r][c].AdjacentMines = b.CountAdjacentMines(r, c)
		}
	}
}
