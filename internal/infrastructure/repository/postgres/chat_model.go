package postgres

import (
	"time"

	"github.com/squadscore/squadscore/internal/domain/chat"
)

type chatRoomTableModel struct {
	ID        string    `db:"id"`
	SquadID   string    `db:"squad_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (m chatRoomTableModel) toDomain() chat.Room {
	return chat.Room{
		ID:        m.ID,
		SquadID:   m.SquadID,
		CreatedAt: m.CreatedAt,
	}
}

type chatMessageTableModel struct {
	ID        string    `db:"id"`
	RoomID    string    `db:"room_id"`
	SenderID  string    `db:"sender_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

func (m chatMessageTableModel) toDomain() chat.Message {
	return chat.Message{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
