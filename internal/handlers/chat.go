package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/mineduel/mineduel-server/internal/match"
	"github.com/mineduel/mineduel-server/internal/middleware"
)

const maxChatMessageLen = 500

type postChatDTO struct {
	Text string `json:"text"`
}

func validateChatText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("message text must not be empty")
	}
	// The limit counts characters, as does varchar(500).
	if utf8.RuneCountInString(text) > maxChatMessageLen {
		return "", fmt.Errorf("message text must be at most %d characters", maxChatMessageLen)
	}
	return text, nil
}

func (g *GameHandler) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var dto postChatDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}
	text, err := validateChatText(dto.Text)
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

	role := match.ResolveRole(identity, session)
	msg, err := g.repo.CreateChatMessage(
		r.Context(), session.ID, identity, string(role), text,
	)
	if err != nil {
		g.writeRejection(w, err)
		return
	}

	g.publishChat(session.ID, msg)
	sendJSONOrLog(w, g.log, msg)
}

func (g *GameHandler) ListChatMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := g.repo.ListChatMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		g.writeRejection(w, err)
		return
	}
	sendJSONOrLog(w, g.log, messages)
}
