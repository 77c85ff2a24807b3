package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/squadscore/squadscore/internal/domain/match"
	qb "github.com/squadscore/squadscore/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create writes the result and all its lines in one transaction so a
// partial submission never becomes visible.
func (r *MatchRepository) Create(ctx context.Context, result match.Result, lines []match.ResultLine) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create match result tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertResult := matchResultInsertModel{
		ID:            result.ID,
		LeaderboardID: result.LeaderboardID,
		Status:        string(result.Status),
		SubmittedBy:   result.SubmittedBy,
		CreatedAt:     result.CreatedAt,
	}
	query, args, err := qb.InsertModel("match_results", insertResult, "")
	if err != nil {
		return fmt.Errorf("build create match result query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create match result: %w", err)
	}

	builder := qb.InsertInto("result_lines").
		Columns("id", "match_result_id", "player_id", "score", "outcome", "created_at")
	for _, line := range lines {
		row := resultLineInsertModel{
			ID:            line.ID,
			MatchResultID: line.MatchResultID,
			PlayerID:      line.PlayerID,
			CreatedAt:     result.CreatedAt,
		}
		if line.Score != nil {
			row.Score = sql.NullInt64{Int64: int64(*line.Score), Valid: true}
		}
		if line.Outcome != nil {
			row.Outcome = sql.NullString{String: string(*line.Outcome), Valid: true}
		}
		builder = builder.Values(row.ID, row.MatchResultID, row.PlayerID, row.Score, row.Outcome, row.CreatedAt)
	}
	query, args, err = builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build create result lines query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create result lines: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create match result tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchResultID string) (match.Result, bool, error) {
	query, args, err := qb.Select("*").From("match_results").
		Where(qb.Eq("id", matchResultID)).
		ToSQL()
	if err != nil {
		return match.Result{}, false, fmt.Errorf("build get match result query: %w", err)
	}

	var row matchResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Result{}, false, nil
		}
		return match.Result{}, false, fmt.Errorf("get match result by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListPendingByLeaderboards(ctx context.Context, leaderboardIDs []string) ([]match.Result, error) {
	if len(leaderboardIDs) == 0 {
		return []match.Result{}, nil
	}

	query, args, err := qb.Select("*").From("match_results").
		Where(
			qb.Eq("status", string(match.StatusPending)),
			qb.In("leaderboard_id", toAnySlice(leaderboardIDs)),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending match results query: %w", err)
	}

	var rows []matchResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending match results: %w", err)
	}

	out := make([]match.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, matchResultID string, status match.Status, reviewedBy string, reviewedAt time.Time) error {
	query, args, err := qb.Update("match_results").
		Set("status", string(status)).
		Set("reviewed_by", reviewedBy).
		Set("reviewed_at", reviewedAt).
		Where(qb.Eq("id", matchResultID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match result status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match result status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update match result status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match result %s not found", matchResultID)
	}

	return nil
}

func (r *MatchRepository) ListLines(ctx context.Context, matchResultID string) ([]match.ResultLine, error) {
	query, args, err := qb.Select("*").From("result_lines").
		Where(qb.Eq("match_result_id", matchResultID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list result lines query: %w", err)
	}

	return r.listLines(ctx, query, args)
}

func (r *MatchRepository) ListApprovedLines(ctx context.Context, leaderboardID string) ([]match.ResultLine, error) {
	query, args, err := qb.Select("*").From("result_lines").
		Where(qb.Expr(
			"match_result_id IN (SELECT id FROM match_results WHERE leaderboard_id = ? AND status = ?)",
			leaderboardID, string(match.StatusApproved),
		)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list approved lines query: %w", err)
	}

	return r.listLines(ctx, query, args)
}

func (r *MatchRepository) listLines(ctx context.Context, query string, args []any) ([]match.ResultLine, error) {
	var rows []resultLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list result lines: %w", err)
	}

	out := make([]match.ResultLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) DeleteLinesByPlayer(ctx context.Context, leaderboardID, playerID string) error {
	query, args, err := qb.DeleteFrom("result_lines").
		Where(
			qb.Eq("player_id", playerID),
			qb.Expr("match_result_id IN (SELECT id FROM match_results WHERE leaderboard_id = ?)", leaderboardID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete lines by player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete result lines by player: %w", err)
	}

	return nil
}

func (r *MatchRepository) DeleteEmptyResults(ctx context.Context, leaderboardID string) error {
	query, args, err := qb.DeleteFrom("match_results").
		Where(
			qb.Eq("leaderboard_id", leaderboardID),
			qb.Expr("NOT EXISTS (SELECT 1 FROM result_lines WHERE result_lines.match_result_id = match_results.id)"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete empty match results query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete empty match results: %w", err)
	}

	return nil
}
