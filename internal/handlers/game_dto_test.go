package handlers

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mineduel/mineduel-server/internal/match"
	"github.com/mineduel/mineduel-server/internal/mines"
)

func TestParseCreateGameDTO(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"ok", "rows=8&cols=8&mine_count=5", false},
		{"ok without mines", "rows=5&cols=20", false},
		{"rows missing", "cols=8", true},
		{"rows too small", "rows=4&cols=8", true},
		{"cols too large", "rows=8&cols=21", true},
		{"too many mines", "rows=5&cols=5&mine_count=26", true},
		{"negative mines", "rows=5&cols=5&mine_count=-1", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			query, err := url.ParseQuery(test.query)
			require.NoError(t, err)
			_, err = ParseCreateGameDTO(query)
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseMoveDTO(t *testing.T) {
	t.Parallel()

	query, err := url.ParseQuery("action=place&row=2&col=3")
	require.NoError(t, err)
	dto, err := ParseMoveDTO(query)
	require.NoError(t, err)
	assert.Equal(t, MoveDTO{Action: "place", Row: 2, Col: 3}, dto)

	query, err = url.ParseQuery("action=detonate&row=2&col=3")
	require.NoError(t, err)
	_, err = ParseMoveDTO(query)
	assert.Error(t, err, "unknown actions must be rejected at the edge")

	query, err = url.ParseQuery("action=flag&row=2")
	require.NoError(t, err)
	_, err = ParseMoveDTO(query)
	assert.Error(t, err, "col is required")
}

func TestApplyMoveRoutesIntents(t *testing.T) {
	t.Parallel()

	s := match.NewSession("g1", "host", mines.New(5, 5))
	s, err := s.Join("guest")
	require.NoError(t, err)

	s, err = applyMove(s, "host", MoveDTO{Action: "place", Row: 0, Col: 0})
	require.NoError(t, err)
	assert.True(t, s.Board[0][0].HasMine)
	assert.Equal(t, match.PhaseReveal, s.TurnPhase)

	s, err = applyMove(s, "host", MoveDTO{Action: "flag", Row: 1, Col: 1})
	require.NoError(t, err)
	assert.True(t, s.Board[1][1].Flagged)
	assert.Equal(t, match.PhaseReveal, s.TurnPhase, "flagging keeps the phase")

	s, err = applyMove(s, "host", MoveDTO{Action: "reveal", Row: 0, Col: 1})
	require.NoError(t, err)
	assert.True(t, s.Board[0][1].Revealed)
	assert.Equal(t, mines.Player2, s.CurrentTurn)
}

func TestGameSessionDTOCounters(t *testing.T) {
	t.Parallel()

	board := mines.New(5, 5)
	board = mines.PlaceMine(board, 0, 0, mines.Player1)
	board = mines.PlaceMine(board, 0, 2, mines.Player1)
	board = mines.PlaceMine(board, 2, 0, mines.Player2)
	board = mines.PlaceMine(board, 4, 4, mines.PrePlaced)
	s := match.NewSession("g1", "host", board)

	dto := NewGameSessionDTO(s)
	assert.Equal(t, 2, dto.Player1Mines)
	assert.Equal(t, 1, dto.Player2Mines)
	assert.Equal(t, 1, dto.PreplacedMines)
}

func TestValidateChatText(t *testing.T) {
	t.Parallel()

	_, err := validateChatText("   ")
	assert.Error(t, err)

	long := make([]byte, maxChatMessageLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = validateChatText(string(long))
	assert.Error(t, err)

	text, err := validateChatText("  gg wp  ")
	require.NoError(t, err)
	assert.Equal(t, "gg wp", text)
}

func TestValidateChatTextCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	// 400 two-byte runes: 800 bytes but well under the character limit.
	wide := strings.Repeat("ж", 400)
	text, err := validateChatText(wide)
	require.NoError(t, err)
	assert.Equal(t, wide, text)

	_, err = validateChatText(strings.Repeat("ж", maxChatMessageLen+1))
	assert.Error(t, err)
}
