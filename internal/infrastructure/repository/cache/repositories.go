package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/squadscore/squadscore/internal/domain/leaderboard"
	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/domain/user"
	basecache "github.com/squadscore/squadscore/internal/platform/cache"
)

// SquadRepository is a read-through cache over squad.Repository. Write
// operations pass through and invalidate the affected keys. Uniqueness
// probes (GetByName, InviteCodeExists) always hit the next layer so
// conflict checks see fresh state.
type SquadRepository struct {
	next  squad.Repository
	cache *basecache.Store
}

func NewSquadRepository(next squad.Repository, cache *basecache.Store) *SquadRepository {
	return &SquadRepository{next: next, cache: cache}
}

func (r *SquadRepository) CreateWithOwner(ctx context.Context, s squad.Squad, owner squad.Membership) error {
	if err := r.next.CreateWithOwner(ctx, s, owner); err != nil {
		return err
	}
	r.cache.Delete(ctx, squadByIDKey(s.ID))
	r.cache.Delete(ctx, squadByInviteKey(s.InviteCode))
	r.invalidateMembership(ctx, owner.SquadID, owner.UserID)
	return nil
}

func (r *SquadRepository) Update(ctx context.Context, s squad.Squad) error {
	if err := r.next.Update(ctx, s); err != nil {
		return err
	}
	r.cache.Delete(ctx, squadByIDKey(s.ID))
	r.cache.Delete(ctx, squadByInviteKey(s.InviteCode))
	return nil
}

func (r *SquadRepository) Delete(ctx context.Context, squadID string) error {
	if err := r.next.Delete(ctx, squadID); err != nil {
		return err
	}
	r.cache.Delete(ctx, squadByIDKey(squadID))
	r.cache.DeletePrefix(ctx, squadByInvitePrefix)
	r.cache.DeletePrefix(ctx, squadMembersPrefix(squadID))
	r.cache.DeletePrefix(ctx, squadMembershipsByUserPrefix)
	return nil
}

func (r *SquadRepository) GetByID(ctx context.Context, squadID string) (squad.Squad, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, squadByIDKey(squadID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, squadID)
		if err != nil {
			return nil, err
		}
		return cachedSquad{value: item, exists: exists}, nil
	})
	if err != nil {
		return squad.Squad{}, false, err
	}

	cached, _ := v.(cachedSquad)
	return cached.value, cached.exists, nil
}

func (r *SquadRepository) GetByName(ctx context.Context, name string) (squad.Squad, bool, error) {
	return r.next.GetByName(ctx, name)
}

func (r *SquadRepository) GetByInviteCode(ctx context.Context, inviteCode string) (squad.Squad, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, squadByInviteKey(inviteCode), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByInviteCode(ctx, inviteCode)
		if err != nil {
			return nil, err
		}
		return cachedSquad{value: item, exists: exists}, nil
	})
	if err != nil {
		return squad.Squad{}, false, err
	}

	cached, _ := v.(cachedSquad)
	return cached.value, cached.exists, nil
}

func (r *SquadRepository) InviteCodeExists(ctx context.Context, inviteCode string) (bool, error) {
	return r.next.InviteCodeExists(ctx, inviteCode)
}

func (r *SquadRepository) ListBySquadIDs(ctx context.Context, squadIDs []string) ([]squad.Squad, error) {
	ids := append([]string(nil), squadIDs...)
	sort.Strings(ids)
	key := "squad:ids:" + strings.Join(ids, ",")
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySquadIDs(ctx, squadIDs)
		if err != nil {
			return nil, err
		}
		return append([]squad.Squad(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]squad.Squad)
	return append([]squad.Squad(nil), items...), nil
}

func (r *SquadRepository) AddMember(ctx context.Context, m squad.Membership) error {
	if err := r.next.AddMember(ctx, m); err != nil {
		return err
	}
	r.invalidateMembership(ctx, m.SquadID, m.UserID)
	return nil
}

func (r *SquadRepository) GetMember(ctx context.Context, squadID, userID string) (squad.Membership, bool, error) {
	key := squadMemberKey(squadID, userID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetMember(ctx, squadID, userID)
		if err != nil {
			return nil, err
		}
		return cachedSquadMember{value: item, exists: exists}, nil
	})
	if err != nil {
		return squad.Membership{}, false, err
	}

	cached, _ := v.(cachedSquadMember)
	return cached.value, cached.exists, nil
}

func (r *SquadRepository) ListMembers(ctx context.Context, squadID string) ([]squad.Membership, error) {
	key := squadMembersPrefix(squadID) + "list"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListMembers(ctx, squadID)
		if err != nil {
			return nil, err
		}
		return append([]squad.Membership(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]squad.Membership)
	return append([]squad.Membership(nil), items...), nil
}

func (r *SquadRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]squad.Membership, error) {
	v, err := r.cache.GetOrLoad(ctx, squadMembershipsByUserKey(userID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListMembershipsByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return append([]squad.Membership(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]squad.Membership)
	return append([]squad.Membership(nil), items...), nil
}

func (r *SquadRepository) CountMembers(ctx context.Context, squadID string) (int, error) {
	key := squadMembersPrefix(squadID) + "count"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.CountMembers(ctx, squadID)
	})
	if err != nil {
		return 0, err
	}

	count, _ := v.(int)
	return count, nil
}

func (r *SquadRepository) UpdateMemberRole(ctx context.Context, squadID, userID string, role squad.Role) error {
	if err := r.next.UpdateMemberRole(ctx, squadID, userID, role); err != nil {
		return err
	}
	r.invalidateMembership(ctx, squadID, userID)
	return nil
}

func (r *SquadRepository) RemoveMember(ctx context.Context, squadID, userID string) error {
	if err := r.next.RemoveMember(ctx, squadID, userID); err != nil {
		return err
	}
	r.invalidateMembership(ctx, squadID, userID)
	return nil
}

func (r *SquadRepository) invalidateMembership(ctx context.Context, squadID, userID string) {
	r.cache.DeletePrefix(ctx, squadMembersPrefix(squadID))
	r.cache.Delete(ctx, squadMembershipsByUserKey(userID))
	r.cache.DeletePrefix(ctx, "squad:ids:")
}

type cachedSquad struct {
	value  squad.Squad
	exists bool
}

type cachedSquadMember struct {
	value  squad.Membership
	exists bool
}

const (
	squadByInvitePrefix          = "squad:invite:"
	squadMembershipsByUserPrefix = "squad:memberships:user:"
)

func squadByIDKey(squadID string) string {
	return "squad:id:" + squadID
}

func squadByInviteKey(inviteCode string) string {
	return squadByInvitePrefix + strings.ToUpper(strings.TrimSpace(inviteCode))
}

func squadMembersPrefix(squadID string) string {
	return "squad:members:" + squadID + ":"
}

func squadMemberKey(squadID, userID string) string {
	return squadMembersPrefix(squadID) + "user:" + userID
}

func squadMembershipsByUserKey(userID string) string {
	return squadMembershipsByUserPrefix + userID
}

// LeaderboardRepository is a read-through cache over
// leaderboard.Repository.
type LeaderboardRepository struct {
	next  leaderboard.Repository
	cache *basecache.Store
}

func NewLeaderboardRepository(next leaderboard.Repository, cache *basecache.Store) *LeaderboardRepository {
	return &LeaderboardRepository{next: next, cache: cache}
}

func (r *LeaderboardRepository) Create(ctx context.Context, l leaderboard.Leaderboard) error {
	if err := r.next.Create(ctx, l); err != nil {
		return err
	}
	r.cache.Delete(ctx, boardByIDKey(l.ID))
	r.cache.Delete(ctx, boardsByAdminKey(l.AdminUserID))
	if l.SquadID != nil {
		r.cache.Delete(ctx, boardsBySquadKey(*l.SquadID))
	}
	return nil
}

func (r *LeaderboardRepository) Delete(ctx context.Context, leaderboardID string) error {
	if err := r.next.Delete(ctx, leaderboardID); err != nil {
		return err
	}
	r.cache.Delete(ctx, boardByIDKey(leaderboardID))
	r.cache.DeletePrefix(ctx, boardsByAdminPrefix)
	r.cache.DeletePrefix(ctx, boardsBySquadPrefix)
	r.cache.DeletePrefix(ctx, boardsByUserPrefix)
	r.cache.DeletePrefix(ctx, boardMembersPrefix(leaderboardID))
	return nil
}

func (r *LeaderboardRepository) GetByID(ctx context.Context, leaderboardID string) (leaderboard.Leaderboard, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, boardByIDKey(leaderboardID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leaderboardID)
		if err != nil {
			return nil, err
		}
		return cachedBoard{value: item, exists: exists}, nil
	})
	if err != nil {
		return leaderboard.Leaderboard{}, false, err
	}

	cached, _ := v.(cachedBoard)
	return cached.value, cached.exists, nil
}

func (r *LeaderboardRepository) ListByUser(ctx context.Context, userID string) ([]leaderboard.Leaderboard, error) {
	v, err := r.cache.GetOrLoad(ctx, boardsByUserKey(userID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return append([]leaderboard.Leaderboard(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]leaderboard.Leaderboard)
	return append([]leaderboard.Leaderboard(nil), items...), nil
}

func (r *LeaderboardRepository) ListByAdmin(ctx context.Context, adminUserID string) ([]leaderboard.Leaderboard, error) {
	v, err := r.cache.GetOrLoad(ctx, boardsByAdminKey(adminUserID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByAdmin(ctx, adminUserID)
		if err != nil {
			return nil, err
		}
		return append([]leaderboard.Leaderboard(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]leaderboard.Leaderboard)
	return append([]leaderboard.Leaderboard(nil), items...), nil
}

func (r *LeaderboardRepository) ListBySquad(ctx context.Context, squadID string) ([]leaderboard.Leaderboard, error) {
	v, err := r.cache.GetOrLoad(ctx, boardsBySquadKey(squadID), func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySquad(ctx, squadID)
		if err != nil {
			return nil, err
		}
		return append([]leaderboard.Leaderboard(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]leaderboard.Leaderboard)
	return append([]leaderboard.Leaderboard(nil), items...), nil
}

func (r *LeaderboardRepository) AddMember(ctx context.Context, m leaderboard.Membership) error {
	if err := r.next.AddMember(ctx, m); err != nil {
		return err
	}
	r.invalidateMembership(ctx, m.LeaderboardID, m.UserID)
	return nil
}

func (r *LeaderboardRepository) IsMember(ctx context.Context, leaderboardID, userID string) (bool, error) {
	key := boardMembersPrefix(leaderboardID) + "user:" + userID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.IsMember(ctx, leaderboardID, userID)
	})
	if err != nil {
		return false, err
	}

	isMember, _ := v.(bool)
	return isMember, nil
}

func (r *LeaderboardRepository) ListMembers(ctx context.Context, leaderboardID string) ([]leaderboard.Membership, error) {
	key := boardMembersPrefix(leaderboardID) + "list"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListMembers(ctx, leaderboardID)
		if err != nil {
			return nil, err
		}
		return append([]leaderboard.Membership(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]leaderboard.Membership)
	return append([]leaderboard.Membership(nil), items...), nil
}

func (r *LeaderboardRepository) CountMembers(ctx context.Context, leaderboardID string) (int, error) {
	key := boardMembersPrefix(leaderboardID) + "count"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.CountMembers(ctx, leaderboardID)
	})
	if err != nil {
		return 0, err
	}

	count, _ := v.(int)
	return count, nil
}

func (r *LeaderboardRepository) RemoveMember(ctx context.Context, leaderboardID, userID string) error {
	if err := r.next.RemoveMember(ctx, leaderboardID, userID); err != nil {
		return err
	}
	r.invalidateMembership(ctx, leaderboardID, userID)
	return nil
}

func (r *LeaderboardRepository) invalidateMembership(ctx context.Context, leaderboardID, userID string) {
	r.cache.DeletePrefix(ctx, boardMembersPrefix(leaderboardID))
	r.cache.Delete(ctx, boardsByUserKey(userID))
}

type cachedBoard struct {
	value  leaderboard.Leaderboard
	exists bool
}

const (
	boardsByUserPrefix  = "leaderboard:list:user:"
	boardsByAdminPrefix = "leaderboard:list:admin:"
	boardsBySquadPrefix = "leaderboard:list:squad:"
)

func boardByIDKey(leaderboardID string) string {
	return "leaderboard:id:" + leaderboardID
}

func boardsByUserKey(userID string) string {
	return boardsByUserPrefix + userID
}

func boardsByAdminKey(adminUserID string) string {
	return boardsByAdminPrefix + adminUserID
}

func boardsBySquadKey(squadID string) string {
	return boardsBySquadPrefix + squadID
}

func boardMembersPrefix(leaderboardID string) string {
	return "leaderboard:members:" + leaderboardID + ":"
}

// UserRepository is a read-through cache over user.Repository.
type UserRepository struct {
	next  user.Repository
	cache *basecache.Store
}

func NewUserRepository(next user.Repository, cache *basecache.Store) *UserRepository {
	return &UserRepository{next: next, cache: cache}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, userByIDKey(userID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return cachedUser{value: item, exists: exists}, nil
	})
	if err != nil {
		return user.User{}, false, err
	}

	cached, _ := v.(cachedUser)
	return cached.value, cached.exists, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, userIDs []string) ([]user.User, error) {
	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)
	key := "user:ids:" + strings.Join(ids, ",")
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByIDs(ctx, userIDs)
		if err != nil {
			return nil, err
		}
		return append([]user.User(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]user.User)
	return append([]user.User(nil), items...), nil
}

func (r *UserRepository) Upsert(ctx context.Context, u user.User) error {
	if err := r.next.Upsert(ctx, u); err != nil {
		return err
	}
	r.cache.Delete(ctx, userByIDKey(u.ID))
	r.cache.DeletePrefix(ctx, "user:ids:")
	return nil
}

type cachedUser struct {
	value  user.User
	exists bool
}

func userByIDKey(userID string) string {
	return "user:id:" + userID
}
