package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/squadscore/squadscore/internal/domain/chat"
	qb "github.com/squadscore/squadscore/internal/platform/querybuilder"
)

type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateRoom(ctx context.Context, room chat.Room) error {
	insertModel := chatRoomTableModel{
		ID:        room.ID,
		SquadID:   room.SquadID,
		CreatedAt: room.CreatedAt,
	}
	query, args, err := qb.InsertModel("chat_rooms", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create chat room query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create chat room: %w", err)
	}

	return nil
}

func (r *ChatRepository) GetRoomBySquad(ctx context.Context, squadID string) (chat.Room, bool, error) {
	query, args, err := qb.Select("*").From("chat_rooms").
		Where(qb.Eq("squad_id", squadID)).
		ToSQL()
	if err != nil {
		return chat.Room{}, false, fmt.Errorf("build get chat room query: %w", err)
	}

	var row chatRoomTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return chat.Room{}, false, nil
		}
		return chat.Room{}, false, fmt.Errorf("get chat room by squad: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, message chat.Message) error {
	insertModel := chatMessageTableModel{
		ID:        message.ID,
		RoomID:    message.RoomID,
		SenderID:  message.SenderID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
	query, args, err := qb.InsertModel("chat_messages", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create chat message query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}

	return nil
}

// ListMessages returns the most recent limit messages in ascending
// creation order. The newest window is selected first, then flipped.
func (r *ChatRepository) ListMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	inner, args, err := qb.Select("*").From("chat_messages").
		Where(qb.Eq("room_id", roomID)).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list chat messages query: %w", err)
	}
	query := "SELECT * FROM (" + inner + ") recent ORDER BY recent.created_at ASC, recent.id ASC"

	var rows []chatMessageTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	out := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
