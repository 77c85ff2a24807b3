package postgres

import (
	"database/sql"
	"time"

	"github.com/squadscore/squadscore/internal/domain/squad"
)

type squadTableModel struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Visibility  string         `db:"visibility"`
	InviteCode  sql.NullString `db:"invite_code"`
	CreatedBy   string         `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (m squadTableModel) toDomain() squad.Squad {
	return squad.Squad{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description.String,
		Visibility:  squad.Visibility(m.Visibility),
		InviteCode:  m.InviteCode.String,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type squadInsertModel struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Visibility  string    `db:"visibility"`
	InviteCode  string    `db:"invite_code"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type squadMemberTableModel struct {
	SquadID  string    `db:"squad_id"`
	UserID   string    `db:"user_id"`
	Role     string    `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}

func (m squadMemberTableModel) toDomain() squad.Membership {
	return squad.Membership{
		SquadID:  m.SquadID,
		UserID:   m.UserID,
		Role:     squad.Role(m.Role),
		JoinedAt: m.JoinedAt,
	}
}
