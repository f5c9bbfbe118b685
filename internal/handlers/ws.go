package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/mineduel/mineduel-server/internal/match"
	"github.com/mineduel/mineduel-server/internal/middleware"
	"github.com/mineduel/mineduel-server/internal/repository"
)

// wsFrame envelopes everything sent to a game's subscribers. State frames
// always carry the full session snapshot, never a diff.
type wsFrame struct {
	Type    string                  `json:"type"` // state | chat | error
	Session *GameSessionDTO         `json:"session,omitempty"`
	Message *repository.ChatMessage `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// wsIntent is a client-to-server action over the socket.
type wsIntent struct {
	Action string `json:"action"` // place | reveal | flag | chat
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Text   string `json:"text"`
}

func (g *GameHandler) publishChat(gameID string, msg *repository.ChatMessage) {
	payload, err := json.Marshal(wsFrame{Type: "chat", Message: msg})
	if err != nil {
		g.log.WithError(err).Error("unable to encode chat frame")
		return
	}
	g.broker.Publish(gameID, payload)
}

func errorFrame(err error) []byte {
	payload, _ := json.Marshal(wsFrame{Type: "error", Error: err.Error()})
	return payload
}

func stateFrame(s match.Session) ([]byte, error) {
	return json.Marshal(wsFrame{Type: "state", Session: ptr(NewGameSessionDTO(s))})
}

// ConnectWS upgrades to a websocket and runs two pumps: incoming intents
// are validated and committed one at a time, outgoing frames are whatever
// the broker fans out for this game (plus caller-only error frames). A
// stale intent that loses the commit race gets an error frame and the
// fresh snapshot; nothing is queued or retried.
func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	gameID := r.PathValue("id")
	session, err := g.repo.FetchGameSession(r.Context(), gameID)
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	session = g.recordSpectator(r.Context(), session, identity)

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Error("unable to upgrade")
		return
	}
	defer conn.Close()

	updates := g.broker.Subscribe(gameID)
	defer g.broker.Unsubscribe(gameID, updates)

	// Frames generated for this caller only (errors, race snapshots).
	direct := make(chan []byte, 16)

	if initial, err := stateFrame(session); err == nil {
		direct <- initial
	}

	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		return g.wsWritePump(ctx, conn, updates, direct)
	})
	eg.Go(func() error {
		return g.wsReadPump(ctx, conn, gameID, identity, direct)
	})
	eg.Go(func() error {
		// Unblocks the read pump when the other pump fails.
		<-ctx.Done()
		return conn.Close()
	})

	err = eg.Wait()
	if err != nil &&
		!errors.Is(err, context.Canceled) &&
		!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		g.log.WithError(err).WithField("gameId", gameID).Warn("ws loop ended")
	}
}

func (g *GameHandler) wsWritePump(
	ctx context.Context, conn *websocket.Conn, updates, direct chan []byte,
) error {
	for {
		var payload []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload = <-updates:
		case payload = <-direct:
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return err
		}
	}
}

func (g *GameHandler) wsReadPump(
	ctx context.Context,
	conn *websocket.Conn,
	gameID, identity string,
	direct chan []byte,
) error {
	for {
		var intent wsIntent
		if err := conn.ReadJSON(&intent); err != nil {
			return err
		}
		if err := g.applyWsIntent(ctx, gameID, identity, intent); err != nil {
			select {
			case direct <- errorFrame(err):
			default:
			}
			if errors.Is(err, repository.ErrVersionConflict) {
				g.sendFreshSnapshot(ctx, gameID, direct)
			}
		}
	}
}

// applyWsIntent runs one fetch-validate-commit round trip. Each intent is
// validated against the freshest committed state, so a retried intent is
// idempotently rejected once it no longer fits.
func (g *GameHandler) applyWsIntent(
	ctx context.Context, gameID, identity string, intent wsIntent,
) error {
	if intent.Action == "chat" {
		text, err := validateChatText(intent.Text)
		if err != nil {
			return err
		}
		session, err := g.repo.FetchGameSession(ctx, gameID)
		if err != nil {
			return err
		}
		role := match.ResolveRole(identity, session)
		msg, err := g.repo.CreateChatMessage(ctx, gameID, identity, string(role), text)
		if err != nil {
			return err
		}
		g.publishChat(gameID, msg)
		return nil
	}

	dto := MoveDTO{Action: intent.Action, Row: intent.Row, Col: intent.Col}
	session, err := g.repo.FetchGameSession(ctx, gameID)
	if err != nil {
		return err
	}
	session, err = applyMove(session, identity, dto)
	if err != nil {
		return err
	}
	_, err = g.commit(ctx, session)
	return err
}

func (g *GameHandler) sendFreshSnapshot(ctx context.Context, gameID string, direct chan []byte) {
	session, err := g.repo.FetchGameSession(ctx, gameID)
	if err != nil {
		return
	}
	if payload, err := stateFrame(session); err == nil {
		select {
		case direct <- payload:
		default:
		}
	}
}
