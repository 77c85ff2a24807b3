package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/squadscore/squadscore/internal/domain/leaderboard"
)

type LeaderboardRepository struct {
	mu      sync.RWMutex
	boards  map[string]leaderboard.Leaderboard
	order   []string
	members map[string]map[string]leaderboard.Membership

	// set by Cascade
	matches *MatchRepository
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{
		boards:  make(map[string]leaderboard.Leaderboard),
		members: make(map[string]map[string]leaderboard.Membership),
	}
}

func (r *LeaderboardRepository) Create(_ context.Context, l leaderboard.Leaderboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[l.ID]; ok {
		return errDuplicate("leaderboards_pkey")
	}
	r.boards[l.ID] = l
	r.order = append(r.order, l.ID)
	return nil
}

func (r *LeaderboardRepository) Delete(_ context.Context, leaderboardID string) error {
	r.mu.Lock()
	delete(r.boards, leaderboardID)
	delete(r.members, leaderboardID)
	for i, id := range r.order {
		if id == leaderboardID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if r.matches != nil {
		r.matches.deleteByLeaderboard(leaderboardID)
	}
	return nil
}

// deleteBySquad removes every leaderboard owned by the squad along
// with its memberships and match results.
func (r *LeaderboardRepository) deleteBySquad(squadID string) {
	r.mu.Lock()
	var removed []string
	kept := r.order[:0]
	for _, id := range r.order {
		l := r.boards[id]
		if l.SquadID != nil && *l.SquadID == squadID {
			delete(r.boards, id)
			delete(r.members, id)
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	r.mu.Unlock()

	if r.matches != nil {
		for _, id := range removed {
			r.matches.deleteByLeaderboard(id)
		}
	}
}

func (r *LeaderboardRepository) GetByID(_ context.Context, leaderboardID string) (leaderboard.Leaderboard, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.boards[leaderboardID]
	if !ok {
		return leaderboard.Leaderboard{}, false, nil
	}
	return l, true, nil
}

func (r *LeaderboardRepository) ListByUser(_ context.Context, userID string) ([]leaderboard.Leaderboard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []leaderboard.Leaderboard
	for _, id := range r.order {
		if _, ok := r.members[id][userID]; ok {
			out = append(out, r.boards[id])
		}
	}
	return out, nil
}

func (r *LeaderboardRepository) ListByAdmin(_ context.Context, adminUserID string) ([]leaderboard.Leaderboard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []leaderboard.Leaderboard
	for _, id := range r.order {
		if r.boards[id].AdminUserID == adminUserID {
			out = append(out, r.boards[id])
		}
	}
	return out, nil
}

func (r *LeaderboardRepository) ListBySquad(_ context.Context, squadID string) ([]leaderboard.Leaderboard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []leaderboard.Leaderboard
	for _, id := range r.order {
		l := r.boards[id]
		if l.SquadID != nil && *l.SquadID == squadID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LeaderboardRepository) AddMember(_ context.Context, m leaderboard.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[m.LeaderboardID]; !ok {
		return fmt.Errorf("leaderboard %s not found", m.LeaderboardID)
	}
	members, ok := r.members[m.LeaderboardID]
	if !ok {
		members = make(map[string]leaderboard.Membership)
		r.members[m.LeaderboardID] = members
	}
	if _, exists := members[m.UserID]; exists {
		return errDuplicate("leaderboard_members_pkey")
	}
	members[m.UserID] = m
	return nil
}

func (r *LeaderboardRepository) IsMember(_ context.Context, leaderboardID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[leaderboardID][userID]
	return ok, nil
}

func (r *LeaderboardRepository) ListMembers(_ context.Context, leaderboardID string) ([]leaderboard.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leaderboard.Membership, 0, len(r.members[leaderboardID]))
	for _, m := range r.members[leaderboardID] {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *LeaderboardRepository) CountMembers(_ context.Context, leaderboardID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members[leaderboardID]), nil
}

func (r *LeaderboardRepository) RemoveMember(_ context.Context, leaderboardID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members[leaderboardID], userID)
	return nil
}
