package mines

// Outcome classifies a board after a move.
type Outcome int

const (
	Ongoing Outcome = iota
	MineRevealed
	AllSafeRevealed
)

// HitMine reports whether (row, col) holds a revealed mine, and who
// placed it.
func HitMine(b Board, row, col int) (bool, Player) {
	if !b.InBounds(row, col) {
		return false, NoPlayer
	}
	cell := b[row][col]
	if cell.Revealed && cell.HasMine {
		return true, cell.MinePlacedBy
	}
	return false, NoPlayer
}

// Evaluate scans the whole board. Any revealed mine anywhere ends the
// game regardless of when or by whom it was uncovered; failing that, a
// board with every safe cell open is a draw.
func Evaluate(b Board) Outcome {
	covered := 0
	for _, row := range b {
		for _, cell := range row {
			if cell.Revealed && cell.HasMine {
				return MineRevealed
			}
			if !cell.Revealed && !cell.HasMine {
				covered++
			}
		}
	}
	if covered == 0 {
		return AllSafeRevealed
	}
	return Ongoing
}
