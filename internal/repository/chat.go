package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type ChatMessage struct {
	ChatMessageId int64              `json:"-"`
	GameSessionId string             `json:"gameId"`
	SenderId      string             `json:"senderId"`
	SenderRole    string             `json:"senderRole"`
	Body          string             `json:"text"`
	CreatedAt     pgtype.Timestamptz `json:"timestamp"`
}

func (q Queries) CreateChatMessage(
	ctx context.Context, gameID, senderID, senderRole, body string,
) (*ChatMessage, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO chat_message (game_session_id, sender_id, sender_role, body)
		VALUES (@game_session_id, @sender_id, @sender_role, @body)
		RETURNING *;`,
		pgx.NamedArgs{
			"game_session_id": gameID,
			"sender_id":       senderID,
			"sender_role":     senderRole,
			"body":            body,
		},
	)
	msg, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[ChatMessage])

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return nil, ErrNotFound
	}
	return msg, err
}

// ListChatMessages returns the game's messages ordered by timestamp
// ascending, the order chat consumers subscribe in.
func (q Queries) ListChatMessages(ctx context.Context, gameID string) ([]ChatMessage, error) {
	rows, _ := q.db.Query(
		ctx,
		`SELECT * FROM chat_message
		WHERE game_session_id = $1
		ORDER BY created_at ASC, chat_message_id ASC`,
		gameID,
	)
	return pgx.CollectRows(rows, pgx.RowToStructByName[ChatMessage])
}
