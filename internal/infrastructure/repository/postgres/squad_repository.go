package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/squadscore/squadscore/internal/domain/squad"
	qb "github.com/squadscore/squadscore/internal/platform/querybuilder"
)

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

// CreateWithOwner writes the squad and its owner membership in one
// transaction so a squad row never exists without an owner.
func (r *SquadRepository) CreateWithOwner(ctx context.Context, s squad.Squad, owner squad.Membership) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create squad tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertModel := squadInsertModel{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Visibility:  string(s.Visibility),
		InviteCode:  s.InviteCode,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	query, args, err := qb.InsertModel("squads", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create squad query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create squad: %w", err)
	}

	memberModel := squadMemberTableModel{
		SquadID:  owner.SquadID,
		UserID:   owner.UserID,
		Role:     string(owner.Role),
		JoinedAt: owner.JoinedAt,
	}
	query, args, err = qb.InsertModel("squad_members", memberModel, "")
	if err != nil {
		return fmt.Errorf("build create owner membership query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create squad tx: %w", err)
	}
	return nil
}

func (r *SquadRepository) Update(ctx context.Context, s squad.Squad) error {
	query, args, err := qb.Update("squads").
		Set("description", s.Description).
		Set("visibility", string(s.Visibility)).
		Set("updated_at", s.UpdatedAt).
		Where(qb.Eq("id", s.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update squad query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update squad: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update squad: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("squad %s not found", s.ID)
	}

	return nil
}

// Delete removes the squad; memberships, the chat room, and its
// messages go with it via ON DELETE CASCADE.
func (r *SquadRepository) Delete(ctx context.Context, squadID string) error {
	query, args, err := qb.DeleteFrom("squads").
		Where(qb.Eq("id", squadID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete squad query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete squad: %w", err)
	}

	return nil
}

func (r *SquadRepository) GetByID(ctx context.Context, squadID string) (squad.Squad, bool, error) {
	return r.getOne(ctx, qb.Eq("id", squadID))
}

func (r *SquadRepository) GetByName(ctx context.Context, name string) (squad.Squad, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(name) = LOWER(?)", name))
}

func (r *SquadRepository) GetByInviteCode(ctx context.Context, inviteCode string) (squad.Squad, bool, error) {
	return r.getOne(ctx, qb.Eq("invite_code", inviteCode))
}

func (r *SquadRepository) getOne(ctx context.Context, condition qb.Condition) (squad.Squad, bool, error) {
	query, args, err := qb.Select("*").From("squads").
		Where(condition).
		ToSQL()
	if err != nil {
		return squad.Squad{}, false, fmt.Errorf("build get squad query: %w", err)
	}

	var row squadTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return squad.Squad{}, false, nil
		}
		return squad.Squad{}, false, fmt.Errorf("get squad: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SquadRepository) InviteCodeExists(ctx context.Context, inviteCode string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("squads").
		Where(qb.Eq("invite_code", inviteCode)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build invite code exists query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check invite code exists: %w", err)
	}
	return count > 0, nil
}

func (r *SquadRepository) ListBySquadIDs(ctx context.Context, squadIDs []string) ([]squad.Squad, error) {
	if len(squadIDs) == 0 {
		return []squad.Squad{}, nil
	}

	query, args, err := qb.Select("*").From("squads").
		Where(qb.In("id", toAnySlice(squadIDs))).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list squads query: %w", err)
	}

	var rows []squadTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list squads by ids: %w", err)
	}

	out := make([]squad.Squad, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SquadRepository) AddMember(ctx context.Context, m squad.Membership) error {
	insertModel := squadMemberTableModel{
		SquadID:  m.SquadID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
	query, args, err := qb.InsertModel("squad_members", insertModel, "")
	if err != nil {
		return fmt.Errorf("build add squad member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add squad member: %w", err)
	}

	return nil
}

func (r *SquadRepository) GetMember(ctx context.Context, squadID, userID string) (squad.Membership, bool, error) {
	query, args, err := qb.Select("*").From("squad_members").
		Where(qb.Eq("squad_id", squadID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return squad.Membership{}, false, fmt.Errorf("build get squad member query: %w", err)
	}

	var row squadMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return squad.Membership{}, false, nil
		}
		return squad.Membership{}, false, fmt.Errorf("get squad member: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SquadRepository) ListMembers(ctx context.Context, squadID string) ([]squad.Membership, error) {
	query, args, err := qb.Select("*").From("squad_members").
		Where(qb.Eq("squad_id", squadID)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list squad members query: %w", err)
	}

	var rows []squadMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list squad members: %w", err)
	}

	out := make([]squad.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SquadRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]squad.Membership, error) {
	query, args, err := qb.Select("*").From("squad_members").
		Where(qb.Eq("user_id", userID)).
		OrderBy("joined_at", "squad_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list memberships query: %w", err)
	}

	var rows []squadMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list memberships by user: %w", err)
	}

	out := make([]squad.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SquadRepository) CountMembers(ctx context.Context, squadID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("squad_members").
		Where(qb.Eq("squad_id", squadID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count squad members query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count squad members: %w", err)
	}
	return count, nil
}

func (r *SquadRepository) UpdateMemberRole(ctx context.Context, squadID, userID string, role squad.Role) error {
	query, args, err := qb.Update("squad_members").
		Set("role", string(role)).
		Where(qb.Eq("squad_id", squadID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update member role query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update member role: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("membership squad=%s user=%s not found", squadID, userID)
	}

	return nil
}

func (r *SquadRepository) RemoveMember(ctx context.Context, squadID, userID string) error {
	query, args, err := qb.DeleteFrom("squad_members").
		Where(qb.Eq("squad_id", squadID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remove squad member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove squad member: %w", err)
	}

	return nil
}
