package match

import (
	"errors"
	"time"

	"github.com/mineduel/mineduel-server/internal/mines"
)

// Rejected intents. These are reported to the initiating caller only and
// never mutate the session; a loss-triggering move is not among them, it
// is a successful transition into StatusFinished.
var (
	ErrNotJoinable  = errors.New("game is not accepting players")
	ErrSelfJoin     = errors.New("cannot join your own game")
	ErrNotActive    = errors.New("game is not active")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrWrongPhase   = errors.New("wrong turn phase for this action")
	ErrSpectator    = errors.New("spectators cannot act on the board")
	ErrCellRevealed = errors.New("cell is already revealed")
	ErrCellFlagged  = errors.New("cell is flagged")
)

// Join attaches identity as the second player and activates the game:
// player1 opens with the place-mine phase. An identity promoted from the
// audience stops being a spectator.
func (s Session) Join(identity string) (Session, error) {
	if s.Status != StatusWaiting {
		return s, ErrNotJoinable
	}
	if identity == s.Player1ID {
		return s, ErrSelfJoin
	}
	s.Player2ID = identity
	s.Spectators = withoutIdentity(s.Spectators, identity)
	s.Status = StatusActive
	s.TurnPhase = PhasePlace
	s.CurrentTurn = mines.Player1
	s.UpdatedAt = time.Now().UTC()
	return s, nil
}

// withoutIdentity copies spectators minus identity, preserving order.
func withoutIdentity(spectators []string, identity string) []string {
	if len(spectators) == 0 {
		return spectators
	}
	kept := make([]string, 0, len(spectators))
	for _, id := range spectators {
		if id != identity {
			kept = append(kept, id)
		}
	}
	return kept
}

// Watch records identity as a spectator. Spectator order is append-only
// and preserved so clients can number them for display. Players and
// already-known spectators are left as-is.
func (s Session) Watch(identity string) (Session, bool) {
	if ResolveRole(identity, s) != RoleSpectator {
		return s, false
	}
	for _, id := range s.Spectators {
		if id == identity {
			return s, false
		}
	}
	spectators := make([]string, len(s.Spectators), len(s.Spectators)+1)
	copy(spectators, s.Spectators)
	s.Spectators = append(spectators, identity)
	s.UpdatedAt = time.Now().UTC()
	return s, true
}

// turnGuard validates the common preconditions of a board mutation: the
// game is active and the acting identity owns the current turn.
func (s Session) turnGuard(identity string) (mines.Player, error) {
	if s.Status != StatusActive {
		return mines.NoPlayer, ErrNotActive
	}
	actor := s.player(identity)
	if actor == mines.NoPlayer {
		return mines.NoPlayer, ErrSpectator
	}
	if actor != s.CurrentTurn {
		return mines.NoPlayer, ErrNotYourTurn
	}
	return actor, nil
}

// finish settles a mine-related loss: the blundering player's opponent
// wins and the fatal coordinate is recorded exactly once.
func (s Session) finish(loser mines.Player, cell Coord, reason LossReason) Session {
	s.Status = StatusFinished
	s.Winner = loser.Opponent()
	s.LosingCell = &cell
	s.LossReason = reason
	s.UpdatedAt = time.Now().UTC()
	return s
}

// PlaceMine executes the place-mine half of a turn. Placing onto a cell
// that already holds a mine is a legal blunder that immediately ends the
// game in the opponent's favor.
func (s Session) PlaceMine(identity string, row, col int) (Session, error) {
	actor, err := s.turnGuard(identity)
	if err != nil {
		return s, err
	}
	if s.TurnPhase != PhasePlace {
		return s, ErrWrongPhase
	}

	switch err := mines.ValidateMinePlacement(s.Board, row, col); {
	case errors.Is(err, mines.ErrOutOfBounds):
		return s, err
	case errors.Is(err, mines.ErrMined):
		return s.finish(actor, Coord{row, col}, LossPlacedOnMine), nil
	case errors.Is(err, mines.ErrRevealed):
		return s, ErrCellRevealed
	}

	s.Board = mines.PlaceMine(s.Board, row, col, actor)
	s.TurnPhase = PhaseReveal
	s.UpdatedAt = time.Now().UTC()
	return s, nil
}

// RevealCell executes the reveal half of a turn, then evaluates the whole
// board: a revealed mine finishes the game against the revealer, a fully
// opened safe area is a draw, anything else passes the turn.
func (s Session) RevealCell(identity string, row, col int) (Session, error) {
	actor, err := s.turnGuard(identity)
	if err != nil {
		return s, err
	}
	if s.TurnPhase != PhaseReveal {
		return s, ErrWrongPhase
	}
	if !s.Board.InBounds(row, col) {
		return s, mines.ErrOutOfBounds
	}
	if s.Board[row][col].Revealed {
		return s, ErrCellRevealed
	}
	if s.Board[row][col].Flagged {
		// The flood fill skips flagged cells, so a reveal aimed at one
		// would silently burn the turn. Reject it instead.
		return s, ErrCellFlagged
	}

	s.Board = mines.Reveal(s.Board, row, col)

	switch mines.Evaluate(s.Board) {
	case mines.MineRevealed:
		return s.finish(actor, Coord{row, col}, LossRevealedMine), nil
	case mines.AllSafeRevealed:
		s.Status = StatusFinished
		s.Winner = mines.NoPlayer
		s.UpdatedAt = time.Now().UTC()
		return s, nil
	}

	s.CurrentTurn = actor.Opponent()
	s.TurnPhase = PhasePlace
	s.UpdatedAt = time.Now().UTC()
	return s, nil
}

// ToggleFlag is turn-bounded but phase-independent, and never advances
// the turn or phase.
func (s Session) ToggleFlag(identity string, row, col int) (Session, mines.FlagResult, error) {
	actor, err := s.turnGuard(identity)
	if err != nil {
		return s, mines.FlagResult{}, err
	}
	if !s.Board.InBounds(row, col) {
		return s, mines.FlagResult{}, mines.ErrOutOfBounds
	}

	board, res := mines.ToggleFlag(s.Board, row, col, actor)
	s.Board = board
	s.UpdatedAt = time.Now().UTC()
	return s, res, nil
}
