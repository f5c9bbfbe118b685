package mines

import "errors"

var (
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	ErrRevealed    = errors.New("cell is already revealed")
	ErrMined       = errors.New("cell already has a mine")
)

// ValidateMinePlacement reports whether (row, col) is a clean spot for a
// new mine. This check is advisory: PlaceMine does not enforce it, and the
// caller may deliberately proceed past ErrMined (placing on an existing
// mine is a legal, game-ending move, not a data error).
func ValidateMinePlacement(b Board, row, col int) error {
	if !b.InBounds(row, col) {
		return ErrOutOfBounds
	}
	if b[row][col].Revealed {
		return ErrRevealed
	}
	if b[row][col].HasMine {
		return ErrMined
	}
	return nil
}

// PlaceMine is a raw mutation primitive: it sets a mine unconditionally
// and refreshes adjacency counts board-wide. Legality is the caller's
// responsibility.
func PlaceMine(b Board, row, col int, placer Player) Board {
	next := b.Clone()
	next[row][col].HasMine = true
	next[row][col].MinePlacedBy = placer
	next.recomputeAdjacency()
	return next
}

// Reveal opens (row, col) and flood-fills outward: whenever a revealed
// cell is mine-free with zero adjacent mines, all 8 neighbors are opened
// too. Flagged cells stop the cascade, already-revealed cells are skipped,
// and a mined cell reveals as a terminal leaf. Each coordinate is visited
// at most once, so the fill terminates after at most rows*cols steps.
func Reveal(b Board, row, col int) Board {
	if !b.InBounds(row, col) {
		return b
	}

	next := b.Clone()
	_, cols := next.Dimensions()

	type point struct{ row, col int }
	queue := []point{{row, col}}
	visited := map[int]bool{row*cols + col: true}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		cell := &next[p.row][p.col]
		if cell.Revealed || cell.Flagged {
			continue
		}
		cell.Revealed = true

		if cell.HasMine || cell.AdjacentMines != 0 {
			continue
		}
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := p.row+dr, p.col+dc
				if !next.InBounds(r, c) || visited[r*cols+c] {
					continue
				}
				visited[r*cols+c] = true
				queue = append(queue, point{r, c})
			}
		}
	}
	return next
}

type FlagResult struct {
	Stolen     bool
	StolenFrom Player
}

// ToggleFlag cycles the flag slot of an unrevealed cell: unflagged cells
// gain the caller's flag, the caller's own flag is removed, and a flag
// owned by someone else is reassigned to the caller ("stolen") with the
// previous owner reported. Revealed or out-of-bounds cells are a no-op.
func ToggleFlag(b Board, row, col int, placer Player) (Board, FlagResult) {
	if !b.InBounds(row, col) || b[row][col].Revealed {
		return b, FlagResult{}
	}

	next := b.Clone()
	cell := &next[row][col]

	switch {
	case !cell.Flagged:
		cell.Flagged = true
		cell.FlagPlacedBy = placer
		return next, FlagResult{}
	case cell.FlagPlacedBy == placer:
		cell.Flagged = false
		cell.FlagPlacedBy = NoPlayer
		return next, FlagResult{}
	default:
		prev := cell.FlagPlacedBy
		cell.FlagPlacedBy = placer
		return next, FlagResult{Stolen: true, StolenFrom: prev}
	}
}
