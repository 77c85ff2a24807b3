package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/squadscore/squadscore/internal/domain/leaderboard"
	qb "github.com/squadscore/squadscore/internal/platform/querybuilder"
)

type LeaderboardRepository struct {
	db *sqlx.DB
}

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) Create(ctx context.Context, l leaderboard.Leaderboard) error {
	insertModel := leaderboardInsertModel{
		ID:          l.ID,
		Name:        l.Name,
		GameName:    l.GameName,
		AdminUserID: l.AdminUserID,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
	}
	if l.SquadID != nil {
		insertModel.SquadID = sql.NullString{String: *l.SquadID, Valid: true}
	}

	query, args, err := qb.InsertModel("leaderboards", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create leaderboard query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create leaderboard: %w", err)
	}

	return nil
}

// Delete removes the board; members, match results, and result lines
// follow via ON DELETE CASCADE.
func (r *LeaderboardRepository) Delete(ctx context.Context, leaderboardID string) error {
	query, args, err := qb.DeleteFrom("leaderboards").
		Where(qb.Eq("id", leaderboardID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete leaderboard query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete leaderboard: %w", err)
	}

	return nil
}

func (r *LeaderboardRepository) GetByID(ctx context.Context, leaderboardID string) (leaderboard.Leaderboard, bool, error) {
	query, args, err := qb.Select("*").From("leaderboards").
		Where(qb.Eq("id", leaderboardID)).
		ToSQL()
	if err != nil {
		return leaderboard.Leaderboard{}, false, fmt.Errorf("build get leaderboard query: %w", err)
	}

	var row leaderboardTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaderboard.Leaderboard{}, false, nil
		}
		return leaderboard.Leaderboard{}, false, fmt.Errorf("get leaderboard by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *LeaderboardRepository) ListByUser(ctx context.Context, userID string) ([]leaderboard.Leaderboard, error) {
	query, args, err := qb.Select("*").From("leaderboards").
		Where(qb.Expr("id IN (SELECT leaderboard_id FROM leaderboard_members WHERE user_id = ?)", userID)).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leaderboards by user query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *LeaderboardRepository) ListByAdmin(ctx context.Context, adminUserID string) ([]leaderboard.Leaderboard, error) {
	query, args, err := qb.Select("*").From("leaderboards").
		Where(qb.Eq("admin_user_id", adminUserID)).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leaderboards by admin query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *LeaderboardRepository) ListBySquad(ctx context.Context, squadID string) ([]leaderboard.Leaderboard, error) {
	query, args, err := qb.Select("*").From("leaderboards").
		Where(qb.Eq("squad_id", squadID)).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leaderboards by squad query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *LeaderboardRepository) list(ctx context.Context, query string, args []any) ([]leaderboard.Leaderboard, error) {
	var rows []leaderboardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leaderboards: %w", err)
	}

	out := make([]leaderboard.Leaderboard, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeaderboardRepository) AddMember(ctx context.Context, m leaderboard.Membership) error {
	insertModel := leaderboardMemberTableModel{
		LeaderboardID: m.LeaderboardID,
		UserID:        m.UserID,
		JoinedAt:      m.JoinedAt,
	}
	query, args, err := qb.InsertModel("leaderboard_members", insertModel, "")
	if err != nil {
		return fmt.Errorf("build add leaderboard member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add leaderboard member: %w", err)
	}

	return nil
}

func (r *LeaderboardRepository) IsMember(ctx context.Context, leaderboardID, userID string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("leaderboard_members").
		Where(qb.Eq("leaderboard_id", leaderboardID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build is leaderboard member query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check leaderboard member: %w", err)
	}
	return count > 0, nil
}

func (r *LeaderboardRepository) ListMembers(ctx context.Context, leaderboardID string) ([]leaderboard.Membership, error) {
	query, args, err := qb.Select("*").From("leaderboard_members").
		Where(qb.Eq("leaderboard_id", leaderboardID)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leaderboard members query: %w", err)
	}

	var rows []leaderboardMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leaderboard members: %w", err)
	}

	out := make([]leaderboard.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeaderboardRepository) CountMembers(ctx context.Context, leaderboardID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("leaderboard_members").
		Where(qb.Eq("leaderboard_id", leaderboardID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count leaderboard members query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count leaderboard members: %w", err)
	}
	return count, nil
}

func (r *LeaderboardRepository) RemoveMember(ctx context.Context, leaderboardID, userID string) error {
	query, args, err := qb.DeleteFrom("leaderboard_members").
		Where(qb.Eq("leaderboard_id", leaderboardID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remove leaderboard member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove leaderboard member: %w", err)
	}

	return nil
}
