package handlers

import (
	"fmt"

	"github.com/gorilla/schema"

	"github.com/mineduel/mineduel-server/internal/match"
	"github.com/mineduel/mineduel-server/internal/mines"
)

const (
	minBoardSide = 5
	maxBoardSide = 20
)

type CreateGameDTO struct {
	Rows      int `schema:"rows,required"`
	Cols      int `schema:"cols,required"`
	MineCount int `schema:"mine_count"`
}

func ParseCreateGameDTO(src map[string][]string) (CreateGameDTO, error) {
	var dto CreateGameDTO
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	if err := dec.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.Rows < minBoardSide || dto.Rows > maxBoardSide ||
		dto.Cols < minBoardSide || dto.Cols > maxBoardSide {
		return dto, fmt.Errorf(
			"rows and cols must be between %d and %d", minBoardSide, maxBoardSide,
		)
	}
	// The board generator silently clamps oversized requests; reject them
	// here instead so the public surface never truncates.
	if dto.MineCount < 0 || dto.MineCount > dto.Rows*dto.Cols {
		return dto, fmt.Errorf("mine_count must be between 0 and %d", dto.Rows*dto.Cols)
	}
	return dto, nil
}

type MoveDTO struct {
	Action string `schema:"action,required"`
	Row    int    `schema:"row,required"`
	Col    int    `schema:"col,required"`
}

func ParseMoveDTO(src map[string][]string) (MoveDTO, error) {
	var dto MoveDTO
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	if err := dec.Decode(&dto, src); err != nil {
		return dto, err
	}
	switch dto.Action {
	case "place", "reveal", "flag":
		return dto, nil
	}
	return dto, fmt.Errorf("action must be one of 'place', 'reveal', 'flag'")
}

// GameSessionDTO is the wire-visible game record: the full session plus
// cosmetic per-placer mine tallies.
type GameSessionDTO struct {
	match.Session
	Player1Mines   int `json:"player1Mines"`
	Player2Mines   int `json:"player2Mines"`
	PreplacedMines int `json:"preplacedMines"`
}

func NewGameSessionDTO(s match.Session) GameSessionDTO {
	return GameSessionDTO{
		Session:        s,
		Player1Mines:   s.Board.CountMinesBy(mines.Player1),
		Player2Mines:   s.Board.CountMinesBy(mines.Player2),
		PreplacedMines: s.Board.CountMinesBy(mines.PrePlaced),
	}
}

type fetchGameResponse struct {
	GameSessionDTO
	Role match.Role `json:"you"`
}
