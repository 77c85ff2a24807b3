package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/squadscore/squadscore/internal/domain/squad"
)

// errDuplicate mirrors the postgres unique-violation text so use cases
// classify conflicts the same way against either backend.
func errDuplicate(constraint string) error {
	return fmt.Errorf("duplicate key value violates unique constraint %q", constraint)
}

type SquadRepository struct {
	mu      sync.RWMutex
	squads  map[string]squad.Squad
	order   []string
	members map[string]map[string]squad.Membership

	// set by Cascade
	boards *LeaderboardRepository
	chats  *ChatRepository
}

func NewSquadRepository() *SquadRepository {
	return &SquadRepository{
		squads:  make(map[string]squad.Squad),
		members: make(map[string]map[string]squad.Membership),
	}
}

// CreateWithOwner stores the squad and its owner membership under one
// lock hold; on any rejection neither is stored.
func (r *SquadRepository) CreateWithOwner(_ context.Context, s squad.Squad, owner squad.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.squads[s.ID]; ok {
		return errDuplicate("squads_pkey")
	}
	for _, existing := range r.squads {
		if strings.EqualFold(existing.Name, s.Name) {
			return errDuplicate("squads_name_key")
		}
		if existing.InviteCode != "" && existing.InviteCode == s.InviteCode {
			return errDuplicate("squads_invite_code_key")
		}
	}

	r.squads[s.ID] = s
	r.order = append(r.order, s.ID)
	r.members[s.ID] = map[string]squad.Membership{owner.UserID: owner}
	return nil
}

func (r *SquadRepository) Update(_ context.Context, s squad.Squad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.squads[s.ID]; !ok {
		return fmt.Errorf("squad %s not found", s.ID)
	}
	r.squads[s.ID] = s
	return nil
}

func (r *SquadRepository) Delete(_ context.Context, squadID string) error {
	r.mu.Lock()
	delete(r.squads, squadID)
	delete(r.members, squadID)
	for i, id := range r.order {
		if id == squadID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if r.boards != nil {
		r.boards.deleteBySquad(squadID)
	}
	if r.chats != nil {
		r.chats.deleteBySquad(squadID)
	}
	return nil
}

func (r *SquadRepository) GetByID(_ context.Context, squadID string) (squad.Squad, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.squads[squadID]
	if !ok {
		return squad.Squad{}, false, nil
	}
	return s, true, nil
}

func (r *SquadRepository) GetByName(_ context.Context, name string) (squad.Squad, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.squads {
		if strings.EqualFold(s.Name, name) {
			return s, true, nil
		}
	}
	return squad.Squad{}, false, nil
}

func (r *SquadRepository) GetByInviteCode(_ context.Context, inviteCode string) (squad.Squad, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.squads {
		if s.InviteCode != "" && s.InviteCode == inviteCode {
			return s, true, nil
		}
	}
	return squad.Squad{}, false, nil
}

func (r *SquadRepository) InviteCodeExists(ctx context.Context, inviteCode string) (bool, error) {
	_, ok, err := r.GetByInviteCode(ctx, inviteCode)
	return ok, err
}

func (r *SquadRepository) ListBySquadIDs(_ context.Context, squadIDs []string) ([]squad.Squad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]struct{}, len(squadIDs))
	for _, id := range squadIDs {
		want[id] = struct{}{}
	}

	out := make([]squad.Squad, 0, len(squadIDs))
	for _, id := range r.order {
		if _, ok := want[id]; ok {
			out = append(out, r.squads[id])
		}
	}
	return out, nil
}

func (r *SquadRepository) AddMember(_ context.Context, m squad.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.members[m.SquadID]
	if !ok {
		members = make(map[string]squad.Membership)
		r.members[m.SquadID] = members
	}
	if _, exists := members[m.UserID]; exists {
		return errDuplicate("squad_members_pkey")
	}
	members[m.UserID] = m
	return nil
}

func (r *SquadRepository) GetMember(_ context.Context, squadID, userID string) (squad.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[squadID][userID]
	if !ok {
		return squad.Membership{}, false, nil
	}
	return m, true, nil
}

func (r *SquadRepository) ListMembers(_ context.Context, squadID string) ([]squad.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]squad.Membership, 0, len(r.members[squadID]))
	for _, m := range r.members[squadID] {
		out = append(out, m)
	}
	sortMemberships(out)
	return out, nil
}

func (r *SquadRepository) ListMembershipsByUser(_ context.Context, userID string) ([]squad.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []squad.Membership
	for _, squadID := range r.order {
		if m, ok := r.members[squadID][userID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *SquadRepository) CountMembers(_ context.Context, squadID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members[squadID]), nil
}

func (r *SquadRepository) UpdateMemberRole(_ context.Context, squadID, userID string, role squad.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[squadID][userID]
	if !ok {
		return fmt.Errorf("membership squad=%s user=%s not found", squadID, userID)
	}
	m.Role = role
	r.members[squadID][userID] = m
	return nil
}

func (r *SquadRepository) RemoveMember(_ context.Context, squadID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members[squadID], userID)
	return nil
}

func sortMemberships(memberships []squad.Membership) {
	sort.SliceStable(memberships, func(i, j int) bool {
		if memberships[i].JoinedAt.Equal(memberships[j].JoinedAt) {
			return memberships[i].UserID < memberships[j].UserID
		}
		return memberships[i].JoinedAt.Before(memberships[j].JoinedAt)
	})
}
