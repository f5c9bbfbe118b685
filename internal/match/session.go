package match

import (
	"time"

	"github.com/mineduel/mineduel-server/internal/mines"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Phase is the two-step structure of a turn: the owner first places a
// mine, then reveals a cell. Empty until the game becomes active.
type Phase string

const (
	PhaseNone   Phase = ""
	PhasePlace  Phase = "place_mine"
	PhaseReveal Phase = "reveal_cell"
)

type Role string

const (
	RolePlayer1   Role = "player1"
	RolePlayer2   Role = "player2"
	RoleSpectator Role = "spectator"
)

type LossReason string

const (
	LossRevealedMine LossReason = "revealed_mine"
	LossPlacedOnMine LossReason = "placed_on_mine"
)

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Session is the authoritative per-game record. Like boards, sessions are
// immutable snapshots: every intent returns a new value and the caller
// commits it (or not) as a whole.
type Session struct {
	ID          string       `json:"id"`
	Player1ID   string       `json:"player1Id"`
	Player2ID   string       `json:"player2Id,omitempty"`
	Spectators  []string     `json:"spectators"`
	CurrentTurn mines.Player `json:"currentTurn"`
	TurnPhase   Phase        `json:"turnPhase,omitempty"`
	Board       mines.Board  `json:"board"`
	Status      Status       `json:"status"`
	Winner      mines.Player `json:"winner,omitempty"`
	LosingCell  *Coord       `json:"losingCell,omitempty"`
	LossReason  LossReason   `json:"lossReason,omitempty"`
	Version     int64        `json:"-"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewSession creates a waiting game hosted by hostID. The board may be
// empty or pre-seeded; the host always moves first once an opponent joins.
func NewSession(id, hostID string, board mines.Board) Session {
	now := time.Now().UTC()
	return Session{
		ID:          id,
		Player1ID:   hostID,
		CurrentTurn: mines.Player1,
		Board:       board,
		Status:      StatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ResolveRole maps an acting identity onto its role in the session.
// Pure and total: any identity that is neither player is a spectator.
func ResolveRole(identity string, s Session) Role {
	switch identity {
	case s.Player1ID:
		return RolePlayer1
	case s.Player2ID:
		return RolePlayer2
	}
	return RoleSpectator
}

// player returns the board attribution of an identity's role.
func (s Session) player(identity string) mines.Player {
	switch ResolveRole(identity, s) {
	case RolePlayer1:
		return mines.Player1
	case RolePlayer2:
		return mines.Player2
	}
	return mines.NoPlayer
}

func (s Session) Finished() bool {
	return s.Status == StatusFinished
}
