package postgres

import (
	"database/sql"
	"time"

	"github.com/squadscore/squadscore/internal/domain/match"
	"github.com/squadscore/squadscore/internal/domain/standings"
)

type matchResultTableModel struct {
	ID            string         `db:"id"`
	LeaderboardID string         `db:"leaderboard_id"`
	Status        string         `db:"status"`
	SubmittedBy   string         `db:"submitted_by"`
	ReviewedBy    sql.NullString `db:"reviewed_by"`
	CreatedAt     time.Time      `db:"created_at"`
	ReviewedAt    *time.Time     `db:"reviewed_at"`
}

func (m matchResultTableModel) toDomain() match.Result {
	out := match.Result{
		ID:            m.ID,
		LeaderboardID: m.LeaderboardID,
		Status:        match.Status(m.Status),
		SubmittedBy:   m.SubmittedBy,
		CreatedAt:     m.CreatedAt,
		ReviewedAt:    m.ReviewedAt,
	}
	if m.ReviewedBy.Valid {
		reviewedBy := m.ReviewedBy.String
		out.ReviewedBy = &reviewedBy
	}
	return out
}

type matchResultInsertModel struct {
	ID            string    `db:"id"`
	LeaderboardID string    `db:"leaderboard_id"`
	Status        string    `db:"status"`
	SubmittedBy   string    `db:"submitted_by"`
	CreatedAt     time.Time `db:"created_at"`
}

type resultLineTableModel struct {
	ID            string         `db:"id"`
	MatchResultID string         `db:"match_result_id"`
	PlayerID      string         `db:"player_id"`
	Score         sql.NullInt64  `db:"score"`
	Outcome       sql.NullString `db:"outcome"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (m resultLineTableModel) toDomain() match.ResultLine {
	out := match.ResultLine{
		ID:            m.ID,
		MatchResultID: m.MatchResultID,
		PlayerID:      m.PlayerID,
	}
	if m.Score.Valid {
		score := int(m.Score.Int64)
		out.Score = &score
	}
	if m.Outcome.Valid {
		outcome := standings.Outcome(m.Outcome.String)
		out.Outcome = &outcome
	}
	return out
}

type resultLineInsertModel struct {
	ID            string         `db:"id"`
	MatchResultID string         `db:"match_result_id"`
	PlayerID      string         `db:"player_id"`
	Score         sql.NullInt64  `db:"score"`
	Outcome       sql.NullString `db:"outcome"`
	CreatedAt     time.Time      `db:"created_at"`
}
