package postgres

import (
	"database/sql"
	"time"

	"github.com/squadscore/squadscore/internal/domain/leaderboard"
)

type leaderboardTableModel struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	GameName    string         `db:"game_name"`
	SquadID     sql.NullString `db:"squad_id"`
	AdminUserID string         `db:"admin_user_id"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (m leaderboardTableModel) toDomain() leaderboard.Leaderboard {
	out := leaderboard.Leaderboard{
		ID:          m.ID,
		Name:        m.Name,
		GameName:    m.GameName,
		AdminUserID: m.AdminUserID,
		Status:      leaderboard.Status(m.Status),
		CreatedAt:   m.CreatedAt,
	}
	if m.SquadID.Valid {
		squadID := m.SquadID.String
		out.SquadID = &squadID
	}
	return out
}

type leaderboardInsertModel struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	GameName    string         `db:"game_name"`
	SquadID     sql.NullString `db:"squad_id"`
	AdminUserID string         `db:"admin_user_id"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
}

type leaderboardMemberTableModel struct {
	LeaderboardID string    `db:"leaderboard_id"`
	UserID        string    `db:"user_id"`
	JoinedAt      time.Time `db:"joined_at"`
}

func (m leaderboardMemberTableModel) toDomain() leaderboard.Membership {
	return leaderboard.Membership{
		LeaderboardID: m.LeaderboardID,
		UserID:        m.UserID,
		JoinedAt:      m.JoinedAt,
	}
}
