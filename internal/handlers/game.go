package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/mineduel/mineduel-server/internal/broker"
	"github.com/mineduel/mineduel-server/internal/config"
	"github.com/mineduel/mineduel-server/internal/match"
	"github.com/mineduel/mineduel-server/internal/middleware"
	"github.com/mineduel/mineduel-server/internal/mines"
	"github.com/mineduel/mineduel-server/internal/repository"
)

type GameHandler struct {
	log    *logrus.Logger
	repo   *repository.Queries
	broker *broker.Broker
	ws     *config.WebSocket
	rnd    *mrand.Rand
}

func NewGameHandler(
	log *logrus.Logger,
	db *pgxpool.Pool,
	b *broker.Broker,
	ws *config.WebSocket,
	rnd *mrand.Rand,
) *GameHandler {
	return &GameHandler{
		log:    log,
		repo:   repository.New(db),
		broker: b,
		ws:     ws,
		rnd:    rnd,
	}
}

func newGameID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// writeRejection maps a rejected intent onto a response for the initiating
// caller. Rule rejections are conflicts with current state, not server
// faults; losing moves never come through here because they succeed.
func (g *GameHandler) writeRejection(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, mines.ErrOutOfBounds):
		status = http.StatusBadRequest
	case errors.Is(err, match.ErrSpectator):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrVersionConflict),
		errors.Is(err, match.ErrNotJoinable),
		errors.Is(err, match.ErrSelfJoin),
		errors.Is(err, match.ErrNotActive),
		errors.Is(err, match.ErrNotYourTurn),
		errors.Is(err, match.ErrWrongPhase),
		errors.Is(err, match.ErrCellRevealed),
		errors.Is(err, match.ErrCellFlagged):
		status = http.StatusConflict
	default:
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to serve game request")
		return
	}
	w.WriteHeader(status)
	sendJSONOrLog(w, g.log, wrapError(err))
}

func (g *GameHandler) publishState(s match.Session) {
	frame := wsFrame{Type: "state", Session: ptr(NewGameSessionDTO(s))}
	payload, err := json.Marshal(frame)
	if err != nil {
		g.log.WithError(err).Error("unable to encode state frame")
		return
	}
	g.broker.Publish(s.ID, payload)
}

func ptr[T any](v T) *T { return &v }

// commit persists the snapshot with a version guard and, on success, fans
// the committed state out to all subscribers.
func (g *GameHandler) commit(ctx context.Context, s match.Session) (match.Session, error) {
	updated, err := g.repo.UpdateGameSession(ctx, s)
	if err != nil {
		return match.Session{}, err
	}
	g.publishState(updated)
	return updated, nil
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.Error("request without identity reached NewGame")
		return
	}

	dto, err := ParseCreateGameDTO(r.URL.Query())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	id, err := newGameID()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to generate game id")
		return
	}

	board := mines.New(dto.Rows, dto.Cols)
	if dto.MineCount > 0 {
		board = mines.NewWithMines(dto.Rows, dto.Cols, dto.MineCount, g.rnd)
	}

	session, err := g.repo.CreateGameSession(
		r.Context(), match.NewSession(id, identity, board),
	)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to create game session")
		return
	}

	g.log.WithFields(logrus.Fields{
		"gameId": session.ID,
		"rows":   dto.Rows,
		"cols":   dto.Cols,
		"mines":  dto.MineCount,
	}).Info("created game")

	sendJSONOrLog(w, g.log, fetchGameResponse{
		GameSessionDTO: NewGameSessionDTO(session),
		Role:           match.RolePlayer1,
	})
}

func (g *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	session, err := g.repo.FetchGameSession(r.Context(), r.PathValue("id"))
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	session, err = session.Join(identity)
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	session, err = g.commit(r.Context(), session)
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	g.log.WithField("gameId", session.ID).Info("second player joined, game active")

	sendJSONOrLog(w, g.log, fetchGameResponse{
		GameSessionDTO: NewGameSessionDTO(session),
		Role:           match.RolePlayer2,
	})
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	session, err := g.repo.FetchGameSession(r.Context(), r.PathValue("id"))
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	session = g.recordSpectator(r.Context(), session, identity)

	sendJSONOrLog(w, g.log, fetchGameResponse{
		GameSessionDTO: NewGameSessionDTO(session),
		Role:           match.ResolveRole(identity, session),
	})
}

// recordSpectator appends a first-time watcher to the session. Losing the
// commit race here is harmless: the caller still gets a valid snapshot
// and will be recorded on its next fetch.
func (g *GameHandler) recordSpectator(
	ctx context.Context, session match.Session, identity string,
) match.Session {
	if identity == "" {
		return session
	}
	watched, added := session.Watch(identity)
	if !added {
		return session
	}
	committed, err := g.commit(ctx, watched)
	if err != nil {
		if !errors.Is(err, repository.ErrVersionConflict) {
			g.log.WithError(err).Warn("unable to record spectator")
		}
		return session
	}
	return committed
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	dto, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	session, err := g.repo.FetchGameSession(r.Context(), r.PathValue("id"))
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	session, err = applyMove(session, identity, dto)
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	session, err = g.commit(r.Context(), session)
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	if session.Finished() {
		g.log.WithFields(logrus.Fields{
			"gameId": session.ID,
			"winner": session.Winner,
			"reason": session.LossReason,
		}).Info("game finished")
	}

	sendJSONOrLog(w, g.log, fetchGameResponse{
		GameSessionDTO: NewGameSessionDTO(session),
		Role:           match.ResolveRole(identity, session),
	})
}

// applyMove routes a decoded move to the session intent it names.
func applyMove(s match.Session, identity string, dto MoveDTO) (match.Session, error) {
	switch dto.Action {
	case "place":
		return s.PlaceMine(identity, dto.Row, dto.Col)
	case "reveal":
		return s.RevealCell(identity, dto.Row, dto.Col)
	case "flag":
		next, _, err := s.ToggleFlag(identity, dto.Row, dto.Col)
		return next, err
	}
	// unreachable: ParseMoveDTO validates the action
	return s, fmt.Errorf("unknown action %q", dto.Action)
}
