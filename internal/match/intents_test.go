package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mineduel/mineduel-server/internal/mines"
)

const (
	alice = "device-alice"
	bob   = "device-bob"
	carol = "device-carol"
)

func activeSession(t *testing.T, rows, cols int) Session {
	t.Helper()
	s := NewSession("g1", alice, mines.New(rows, cols))
	s, err := s.Join(bob)
	require.NoError(t, err)
	return s
}

func TestJoin(t *testing.T) {
	t.Parallel()

	s := NewSession("g1", alice, mines.New(5, 5))
	assert.Equal(t, StatusWaiting, s.Status)
	assert.Equal(t, PhaseNone, s.TurnPhase)

	_, err := s.Join(alice)
	assert.ErrorIs(t, err, ErrSelfJoin)

	s, err = s.Join(bob)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, PhasePlace, s.TurnPhase)
	assert.Equal(t, mines.Player1, s.CurrentTurn)

	_, err = s.Join(carol)
	assert.ErrorIs(t, err, ErrNotJoinable)
}

func TestJoinPromotesSpectator(t *testing.T) {
	t.Parallel()

	s := NewSession("g1", alice, mines.New(5, 5))
	s, _ = s.Watch(bob)
	s, _ = s.Watch(carol)

	// Bob was browsing the waiting game before taking the open seat;
	// once he is player2 he must no longer be listed as a spectator.
	s, err := s.Join(bob)
	require.NoError(t, err)
	assert.Equal(t, bob, s.Player2ID)
	assert.Equal(t, []string{carol}, s.Spectators)
	assert.Equal(t, RolePlayer2, ResolveRole(bob, s))
}

func TestResolveRole(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)
	assert.Equal(t, RolePlayer1, ResolveRole(alice, s))
	assert.Equal(t, RolePlayer2, ResolveRole(bob, s))
	assert.Equal(t, RoleSpectator, ResolveRole(carol, s))
}

func TestWatch(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)

	s, added := s.Watch(carol)
	assert.True(t, added)
	s, added = s.Watch(carol)
	assert.False(t, added, "watching twice must not duplicate")
	s, added = s.Watch(alice)
	assert.False(t, added, "players are not spectators")

	s, _ = s.Watch("device-dave")
	assert.Equal(t, []string{carol, "device-dave"}, s.Spectators,
		"spectator order must be preserved")
}

func TestTurnCycle(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)

	// Bob cannot move first and Alice cannot reveal before placing.
	_, err := s.PlaceMine(bob, 0, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = s.RevealCell(alice, 0, 0)
	assert.ErrorIs(t, err, ErrWrongPhase)

	s, err = s.PlaceMine(alice, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, PhaseReveal, s.TurnPhase)
	assert.Equal(t, mines.Player1, s.CurrentTurn, "placing keeps the turn")

	// (0,1) borders the mine, so the reveal opens exactly one cell.
	s, err = s.RevealCell(alice, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, mines.Player2, s.CurrentTurn, "reveal passes the turn")
	assert.Equal(t, PhasePlace, s.TurnPhase)
}

func TestPlaceOnExistingMineLosesInstantly(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)

	s, err := s.PlaceMine(alice, 0, 0)
	require.NoError(t, err)
	s, err = s.RevealCell(alice, 1, 1)
	require.NoError(t, err)

	// Bob blunders onto Alice's mine at (0,0).
	s, err = s.PlaceMine(bob, 0, 0)
	require.NoError(t, err, "a losing placement is a legal move, not an error")
	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, mines.Player1, s.Winner)
	assert.Equal(t, LossPlacedOnMine, s.LossReason)
	require.NotNil(t, s.LosingCell)
	assert.Equal(t, Coord{0, 0}, *s.LosingCell)
}

func TestRevealMineLosesForRevealer(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)

	// Alice mines (4,4), reveals elsewhere; Bob places and then steps
	// onto the mine.
	s, err := s.PlaceMine(alice, 4, 4)
	require.NoError(t, err)
	s, err = s.RevealCell(alice, 4, 3)
	require.NoError(t, err)
	s, err = s.PlaceMine(bob, 0, 0)
	require.NoError(t, err)

	s, err = s.RevealCell(bob, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, mines.Player1, s.Winner,
		"the revealer's opponent wins, whoever placed the mine")
	assert.Equal(t, LossRevealedMine, s.LossReason)
	assert.Equal(t, Coord{4, 4}, *s.LosingCell)
}

func TestPreplacedMineWinGoesToOpponentOfRevealer(t *testing.T) {
	t.Parallel()

	board := mines.PlaceMine(mines.New(5, 5), 2, 2, mines.PrePlaced)
	s := NewSession("g1", alice, board)
	s, err := s.Join(bob)
	require.NoError(t, err)

	s, err = s.PlaceMine(alice, 0, 0)
	require.NoError(t, err)
	s, err = s.RevealCell(alice, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, mines.Player2, s.Winner,
		"mine attribution is irrelevant to win attribution")
	assert.Equal(t, LossRevealedMine, s.LossReason)
}

func TestDrawWhenAllSafeCellsRevealed(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)

	// One mine in the corner, then a cascade that opens every safe cell.
	s, err := s.PlaceMine(alice, 0, 0)
	require.NoError(t, err)
	s, err = s.RevealCell(alice, 4, 4)
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, mines.NoPlayer, s.Winner, "draw has no winner")
	assert.Nil(t, s.LosingCell)
	assert.Empty(t, s.LossReason)
}

func TestRevealGuards(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)
	s, err := s.PlaceMine(alice, 0, 0)
	require.NoError(t, err)

	_, err = s.RevealCell(alice, 9, 9)
	assert.ErrorIs(t, err, mines.ErrOutOfBounds)

	_, err = s.RevealCell(carol, 1, 1)
	assert.ErrorIs(t, err, ErrSpectator)

	s, _, err = s.ToggleFlag(alice, 3, 3)
	require.NoError(t, err)
	_, err = s.RevealCell(alice, 3, 3)
	assert.ErrorIs(t, err, ErrCellFlagged)
}

func TestFlaggingIsPhaseIndependentAndKeepsTurn(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)

	s, _, err := s.ToggleFlag(alice, 1, 1)
	require.NoError(t, err, "flagging legal in place phase")
	assert.Equal(t, PhasePlace, s.TurnPhase)
	assert.Equal(t, mines.Player1, s.CurrentTurn)

	s, err = s.PlaceMine(alice, 0, 0)
	require.NoError(t, err)
	s, _, err = s.ToggleFlag(alice, 2, 2)
	require.NoError(t, err, "flagging legal in reveal phase")
	assert.Equal(t, PhaseReveal, s.TurnPhase)

	_, _, err = s.ToggleFlag(bob, 2, 2)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, _, err = s.ToggleFlag(carol, 2, 2)
	assert.ErrorIs(t, err, ErrSpectator)
}

func TestFinishedSessionIsImmutable(t *testing.T) {
	t.Parallel()

	s := activeSession(t, 5, 5)
	s, err := s.PlaceMine(alice, 0, 0)
	require.NoError(t, err)
	s, err = s.RevealCell(alice, 4, 4)
	require.NoError(t, err)
	require.True(t, s.Finished())

	before := s

	_, err = s.PlaceMine(alice, 1, 1)
	assert.ErrorIs(t, err, ErrNotActive)
	_, err = s.RevealCell(bob, 1, 1)
	assert.ErrorIs(t, err, ErrNotActive)
	_, _, err = s.ToggleFlag(alice, 1, 1)
	assert.ErrorIs(t, err, ErrNotActive)

	assert.Equal(t, before, s)
}
