package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mineduel/mineduel-server/internal/match"
	"github.com/mineduel/mineduel-server/internal/mines"
)

type gameSessionRow struct {
	GameSessionId string
	Player1Id     string
	Player2Id     string
	Spectators    []byte
	CurrentTurn   string
	TurnPhase     string
	Board         []byte
	Status        string
	Winner        string
	LosingRow     *int32
	LosingCol     *int32
	LossReason    string
	Version       int64
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

func (r gameSessionRow) toSession() (match.Session, error) {
	var board mines.Board
	if err := json.Unmarshal(r.Board, &board); err != nil {
		return match.Session{}, fmt.Errorf("unable to decode board: %w", err)
	}
	var spectators []string
	if err := json.Unmarshal(r.Spectators, &spectators); err != nil {
		return match.Session{}, fmt.Errorf("unable to decode spectators: %w", err)
	}

	s := match.Session{
		ID:          r.GameSessionId,
		Player1ID:   r.Player1Id,
		Player2ID:   r.Player2Id,
		Spectators:  spectators,
		CurrentTurn: mines.Player(r.CurrentTurn),
		TurnPhase:   match.Phase(r.TurnPhase),
		Board:       board,
		Status:      match.Status(r.Status),
		Winner:      mines.Player(r.Winner),
		LossReason:  match.LossReason(r.LossReason),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
	if r.LosingRow != nil && r.LosingCol != nil {
		s.LosingCell = &match.Coord{Row: int(*r.LosingRow), Col: int(*r.LosingCol)}
	}
	return s, nil
}

func sessionArgs(s match.Session) (pgx.NamedArgs, error) {
	board, err := json.Marshal(s.Board)
	if err != nil {
		return nil, fmt.Errorf("unable to encode board: %w", err)
	}
	spectators := s.Spectators
	if spectators == nil {
		spectators = []string{}
	}
	spectatorsJSON, err := json.Marshal(spectators)
	if err != nil {
		return nil, fmt.Errorf("unable to encode spectators: %w", err)
	}

	args := pgx.NamedArgs{
		"game_session_id": s.ID,
		"player1_id":      s.Player1ID,
		"player2_id":      s.Player2ID,
		"spectators":      spectatorsJSON,
		"current_turn":    string(s.CurrentTurn),
		"turn_phase":      string(s.TurnPhase),
		"board":           board,
		"status":          string(s.Status),
		"winner":          string(s.Winner),
		"losing_row":      nil,
		"losing_col":      nil,
		"loss_reason":     string(s.LossReason),
	}
	if s.LosingCell != nil {
		args["losing_row"] = int32(s.LosingCell.Row)
		args["losing_col"] = int32(s.LosingCell.Col)
	}
	return args, nil
}

func (q Queries) CreateGameSession(ctx context.Context, s match.Session) (match.Session, error) {
	args, err := sessionArgs(s)
	if err != nil {
		return match.Session{}, err
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			game_session_id, player1_id, player2_id, spectators,
			current_turn, turn_phase, board, status, winner,
			losing_row, losing_col, loss_reason
		)
		VALUES (
			@game_session_id, @player1_id, @player2_id, @spectators,
			@current_turn, @turn_phase, @board, @status, @winner,
			@losing_row, @losing_col, @loss_reason
		)
		RETURNING *;`,
		args,
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[gameSessionRow])
	if err != nil {
		return match.Session{}, err
	}
	return row.toSession()
}

func (q Queries) FetchGameSession(ctx context.Context, id string) (match.Session, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		id,
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[gameSessionRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return match.Session{}, ErrNotFound
	}
	if err != nil {
		return match.Session{}, err
	}
	return row.toSession()
}

// UpdateGameSession commits a full-snapshot replacement guarded by the
// version the caller read. A concurrent commit bumps the version first
// and this update matches zero rows, surfacing ErrVersionConflict.
func (q Queries) UpdateGameSession(ctx context.Context, s match.Session) (match.Session, error) {
	args, err := sessionArgs(s)
	if err != nil {
		return match.Session{}, err
	}
	args["version"] = s.Version

	rows, _ := q.db.Query(
		ctx,
		`UPDATE game_session SET
			player2_id   = @player2_id,
			spectators   = @spectators,
			current_turn = @current_turn,
			turn_phase   = @turn_phase,
			board        = @board,
			status       = @status,
			winner       = @winner,
			losing_row   = @losing_row,
			losing_col   = @losing_col,
			loss_reason  = @loss_reason,
			version      = version + 1,
			updated_at   = now()
		WHERE game_session_id = @game_session_id AND version = @version
		RETURNING *;`,
		args,
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[gameSessionRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return match.Session{}, ErrVersionConflict
	}
	if err != nil {
		return match.Session{}, err
	}
	return row.toSession()
}
