package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/squadscore/squadscore/internal/domain/chat"
	"github.com/squadscore/squadscore/internal/domain/leaderboard"
	"github.com/squadscore/squadscore/internal/domain/match"
	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/domain/user"
	idgen "github.com/squadscore/squadscore/internal/platform/id"
	"github.com/squadscore/squadscore/internal/platform/invite"
	"github.com/squadscore/squadscore/internal/platform/logging"
)

const defaultCascadeWorkers = 4

type CreateSquadInput struct {
	UserID      string
	Name        string
	Description string
	Visibility  squad.Visibility
}

type UpdateSquadInput struct {
	SquadID     string
	UserID      string
	Description string
	Visibility  squad.Visibility
}

type SquadWithRole struct {
	Squad       squad.Squad
	Role        squad.Role
	MemberCount int
}

type SquadMemberDetail struct {
	UserID      string
	Role        squad.Role
	JoinedAt    time.Time
	Username    string
	Email       string
	DisplayName string
}

// SquadService owns squad lifecycle, invite-code joins, and the
// member/owner role transitions with their removal cascade.
type SquadService struct {
	squads         squad.Repository
	leaderboards   leaderboard.Repository
	matches        match.Repository
	chats          chat.Repository
	users          user.Repository
	idGen          idgen.Generator
	logger         *logging.Logger
	cascadeWorkers int
	now            func() time.Time
}

func NewSquadService(
	squads squad.Repository,
	leaderboards leaderboard.Repository,
	matches match.Repository,
	chats chat.Repository,
	users user.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *SquadService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SquadService{
		squads:         squads,
		leaderboards:   leaderboards,
		matches:        matches,
		chats:          chats,
		users:          users,
		idGen:          idGen,
		logger:         logger,
		cascadeWorkers: defaultCascadeWorkers,
		now:            time.Now,
	}
}

func (s *SquadService) Create(ctx context.Context, input CreateSquadInput) (squad.Squad, error) {
	ctx, span := startUsecaseSpan(ctx, "SquadService.Create")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.UserID == "" {
		return squad.Squad{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return squad.Squad{}, fmt.Errorf("%w: squad name is required", ErrInvalidInput)
	}
	if input.Visibility == "" {
		input.Visibility = squad.VisibilityPrivate
	}

	if _, exists, err := s.squads.GetByName(ctx, input.Name); err != nil {
		return squad.Squad{}, fmt.Errorf("check squad name: %w", err)
	} else if exists {
		return squad.Squad{}, fmt.Errorf("%w: squad name %q is taken", ErrConflict, input.Name)
	}

	squadID, err := s.idGen.NewID()
	if err != nil {
		return squad.Squad{}, fmt.Errorf("generate squad id: %w", err)
	}
	inviteCode, err := invite.NewCode(ctx, s.squads.InviteCodeExists)
	if err != nil {
		return squad.Squad{}, fmt.Errorf("generate invite code: %w", err)
	}

	now := s.now().UTC()
	created := squad.Squad{
		ID:          squadID,
		Name:        input.Name,
		Description: input.Description,
		Visibility:  input.Visibility,
		InviteCode:  inviteCode,
		CreatedBy:   input.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := created.Validate(); err != nil {
		return squad.Squad{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	owner := squad.Membership{
		SquadID:  squadID,
		UserID:   input.UserID,
		Role:     squad.RoleOwner,
		JoinedAt: now,
	}
	if err := s.squads.CreateWithOwner(ctx, created, owner); err != nil {
		if isDuplicateConstraintError(err) {
			return squad.Squad{}, fmt.Errorf("%w: squad name %q is taken", ErrConflict, input.Name)
		}
		return squad.Squad{}, fmt.Errorf("create squad: %w", err)
	}

	// The chat room is provisioned lazily on first use anyway, so a
	// failure here only costs that first-use round trip.
	roomID, err := s.idGen.NewID()
	if err == nil {
		err = s.chats.CreateRoom(ctx, chat.Room{ID: roomID, SquadID: squadID, CreatedAt: now})
	}
	if err != nil {
		s.logger.WarnContext(ctx, "provision chat room failed", "squad_id", squadID, "error", err)
	}

	return created, nil
}

func (s *SquadService) Get(ctx context.Context, squadID, userID string) (squad.Squad, error) {
	squadID = strings.TrimSpace(squadID)
	userID = strings.TrimSpace(userID)
	if squadID == "" || userID == "" {
		return squad.Squad{}, fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}

	if _, err := s.requireMember(ctx, squadID, userID); err != nil {
		return squad.Squad{}, err
	}

	found, exists, err := s.squads.GetByID(ctx, squadID)
	if err != nil {
		return squad.Squad{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return squad.Squad{}, fmt.Errorf("%w: squad %s", ErrNotFound, squadID)
	}

	return found, nil
}

func (s *SquadService) ListMine(ctx context.Context, userID string) ([]SquadWithRole, error) {
	ctx, span := startUsecaseSpan(ctx, "SquadService.ListMine")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	memberships, err := s.squads.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list squad memberships: %w", err)
	}
	if len(memberships) == 0 {
		return []SquadWithRole{}, nil
	}

	squadIDs := make([]string, 0, len(memberships))
	roleBySquad := make(map[string]squad.Role, len(memberships))
	for _, m := range memberships {
		squadIDs = append(squadIDs, m.SquadID)
		roleBySquad[m.SquadID] = m.Role
	}

	squads, err := s.squads.ListBySquadIDs(ctx, squadIDs)
	if err != nil {
		return nil, fmt.Errorf("list squads: %w", err)
	}

	out := make([]SquadWithRole, 0, len(squads))
	for _, sq := range squads {
		count, err := s.squads.CountMembers(ctx, sq.ID)
		if err != nil {
			return nil, fmt.Errorf("count members for squad=%s: %w", sq.ID, err)
		}
		out = append(out, SquadWithRole{
			Squad:       sq,
			Role:        roleBySquad[sq.ID],
			MemberCount: count,
		})
	}

	return out, nil
}

func (s *SquadService) Update(ctx context.Context, input UpdateSquadInput) (squad.Squad, error) {
	input.SquadID = strings.TrimSpace(input.SquadID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.Description = strings.TrimSpace(input.Description)
	if input.SquadID == "" || input.UserID == "" {
		return squad.Squad{}, fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}

	if _, err := s.requireOwner(ctx, input.SquadID, input.UserID); err != nil {
		return squad.Squad{}, err
	}

	current, exists, err := s.squads.GetByID(ctx, input.SquadID)
	if err != nil {
		return squad.Squad{}, fmt.Errorf("get squad for update: %w", err)
	}
	if !exists {
		return squad.Squad{}, fmt.Errorf("%w: squad %s", ErrNotFound, input.SquadID)
	}

	current.Description = input.Description
	if input.Visibility != "" {
		current.Visibility = input.Visibility
	}
	current.UpdatedAt = s.now().UTC()
	if err := current.Validate(); err != nil {
		return squad.Squad{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.squads.Update(ctx, current); err != nil {
		return squad.Squad{}, fmt.Errorf("update squad: %w", err)
	}

	return current, nil
}

func (s *SquadService) Delete(ctx context.Context, squadID, userID string) error {
	squadID = strings.TrimSpace(squadID)
	userID = strings.TrimSpace(userID)
	if squadID == "" || userID == "" {
		return fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}

	if _, err := s.requireOwner(ctx, squadID, userID); err != nil {
		return err
	}

	boards, err := s.leaderboards.ListBySquad(ctx, squadID)
	if err != nil {
		return fmt.Errorf("list leaderboards for squad delete: %w", err)
	}
	var errs []error
	for _, board := range boards {
		if err := s.leaderboards.Delete(ctx, board.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete leaderboard %s: %w", board.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("squad delete cascade: %w", err)
	}

	if err := s.squads.Delete(ctx, squadID); err != nil {
		return fmt.Errorf("delete squad: %w", err)
	}

	return nil
}

func (s *SquadService) JoinByInviteCode(ctx context.Context, userID, code string) (squad.Squad, error) {
	userID = strings.TrimSpace(userID)
	code = invite.Normalize(code)
	if userID == "" {
		return squad.Squad{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if code == "" {
		return squad.Squad{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	target, exists, err := s.squads.GetByInviteCode(ctx, code)
	if err != nil {
		return squad.Squad{}, fmt.Errorf("get squad by invite code: %w", err)
	}
	if !exists {
		return squad.Squad{}, fmt.Errorf("%w: invite code does not match a squad", ErrNotFound)
	}

	if _, member, err := s.squads.GetMember(ctx, target.ID, userID); err != nil {
		return squad.Squad{}, fmt.Errorf("check existing membership: %w", err)
	} else if member {
		return squad.Squad{}, fmt.Errorf("%w: already a member of squad %s", ErrConflict, target.ID)
	}

	if err := s.squads.AddMember(ctx, squad.Membership{
		SquadID:  target.ID,
		UserID:   userID,
		Role:     squad.RoleMember,
		JoinedAt: s.now().UTC(),
	}); err != nil {
		if isDuplicateConstraintError(err) {
			return squad.Squad{}, fmt.Errorf("%w: already a member of squad %s", ErrConflict, target.ID)
		}
		return squad.Squad{}, fmt.Errorf("join squad: %w", err)
	}

	return target, nil
}

func (s *SquadService) ListMembers(ctx context.Context, squadID, userID string) ([]SquadMemberDetail, error) {
	squadID = strings.TrimSpace(squadID)
	userID = strings.TrimSpace(userID)
	if squadID == "" || userID == "" {
		return nil, fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}

	if _, err := s.requireMember(ctx, squadID, userID); err != nil {
		return nil, err
	}

	memberships, err := s.squads.ListMembers(ctx, squadID)
	if err != nil {
		return nil, fmt.Errorf("list squad members: %w", err)
	}

	userIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	profiles, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list member profiles: %w", err)
	}
	byID := make(map[string]user.User, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := make([]SquadMemberDetail, 0, len(memberships))
	for _, m := range memberships {
		detail := SquadMemberDetail{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
		if p, ok := byID[m.UserID]; ok {
			detail.Username = p.Handle()
			detail.Email = p.Email
			detail.DisplayName = p.DisplayName
		}
		out = append(out, detail)
	}

	return out, nil
}

// Promote moves a member to owner. Promoting an owner again is a
// policy error, not a no-op, so callers surface the stale view.
func (s *SquadService) Promote(ctx context.Context, squadID, actingUserID, targetUserID string) error {
	squadID = strings.TrimSpace(squadID)
	actingUserID = strings.TrimSpace(actingUserID)
	targetUserID = strings.TrimSpace(targetUserID)
	if squadID == "" || actingUserID == "" || targetUserID == "" {
		return fmt.Errorf("%w: squad id, acting user id, and target user id are required", ErrInvalidInput)
	}

	if _, err := s.requireOwner(ctx, squadID, actingUserID); err != nil {
		return err
	}

	target, err := s.getTargetMember(ctx, squadID, targetUserID)
	if err != nil {
		return err
	}
	if target.Role == squad.RoleOwner {
		return fmt.Errorf("%w: user %s is already an owner", ErrInvalidInput, targetUserID)
	}

	if err := s.squads.UpdateMemberRole(ctx, squadID, targetUserID, squad.RoleOwner); err != nil {
		return fmt.Errorf("promote member: %w", err)
	}

	return nil
}

// Demote moves an owner back to member. Owners cannot demote
// themselves.
func (s *SquadService) Demote(ctx context.Context, squadID, actingUserID, targetUserID string) error {
	squadID = strings.TrimSpace(squadID)
	actingUserID = strings.TrimSpace(actingUserID)
	targetUserID = strings.TrimSpace(targetUserID)
	if squadID == "" || actingUserID == "" || targetUserID == "" {
		return fmt.Errorf("%w: squad id, acting user id, and target user id are required", ErrInvalidInput)
	}

	if _, err := s.requireOwner(ctx, squadID, actingUserID); err != nil {
		return err
	}
	if targetUserID == actingUserID {
		return fmt.Errorf("%w: owners cannot demote themselves", ErrForbidden)
	}

	target, err := s.getTargetMember(ctx, squadID, targetUserID)
	if err != nil {
		return err
	}
	if target.Role != squad.RoleOwner {
		return fmt.Errorf("%w: user %s is not an owner", ErrInvalidInput, targetUserID)
	}

	if err := s.squads.UpdateMemberRole(ctx, squadID, targetUserID, squad.RoleMember); err != nil {
		return fmt.Errorf("demote member: %w", err)
	}

	return nil
}

// Remove deletes a member from the squad after cleaning up their
// presence on every squad leaderboard. Owners must be demoted first
// and nobody removes themselves. The membership row is only deleted
// once the whole cascade has succeeded.
func (s *SquadService) Remove(ctx context.Context, squadID, actingUserID, targetUserID string) error {
	ctx, span := startUsecaseSpan(ctx, "SquadService.Remove")
	defer span.End()

	squadID = strings.TrimSpace(squadID)
	actingUserID = strings.TrimSpace(actingUserID)
	targetUserID = strings.TrimSpace(targetUserID)
	if squadID == "" || actingUserID == "" || targetUserID == "" {
		return fmt.Errorf("%w: squad id, acting user id, and target user id are required", ErrInvalidInput)
	}

	if _, err := s.requireOwner(ctx, squadID, actingUserID); err != nil {
		return err
	}
	if targetUserID == actingUserID {
		return fmt.Errorf("%w: owners cannot remove themselves", ErrForbidden)
	}

	target, err := s.getTargetMember(ctx, squadID, targetUserID)
	if err != nil {
		return err
	}
	if target.Role == squad.RoleOwner {
		return fmt.Errorf("%w: demote owner %s before removal", ErrForbidden, targetUserID)
	}

	boards, err := s.leaderboards.ListBySquad(ctx, squadID)
	if err != nil {
		return fmt.Errorf("list leaderboards for removal: %w", err)
	}
	if err := s.cleanupLeaderboards(ctx, boards, targetUserID); err != nil {
		return fmt.Errorf("removal cascade for user=%s: %w", targetUserID, err)
	}

	if err := s.squads.RemoveMember(ctx, squadID, targetUserID); err != nil {
		return fmt.Errorf("remove squad member: %w", err)
	}

	return nil
}

// cleanupLeaderboards erases one user's traces from the given boards.
// Board cleanups run on a bounded pool; step errors are accumulated so
// one failing board does not hide the others.
func (s *SquadService) cleanupLeaderboards(ctx context.Context, boards []leaderboard.Leaderboard, userID string) error {
	if len(boards) == 0 {
		return nil
	}

	workerCount := s.cascadeWorkers
	if workerCount > len(boards) {
		workerCount = len(boards)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return fmt.Errorf("create cascade worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		errs    []error
		workers sync.WaitGroup
	)
	for _, board := range boards {
		board := board
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if err := s.cleanupLeaderboardUser(ctx, board.ID, userID); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("leaderboard %s: %w", board.ID, err))
				mu.Unlock()
			}
		}); err != nil {
			workers.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit cleanup for leaderboard %s: %w", board.ID, err))
			mu.Unlock()
		}
	}
	workers.Wait()

	return errors.Join(errs...)
}

func (s *SquadService) cleanupLeaderboardUser(ctx context.Context, leaderboardID, userID string) error {
	var errs []error
	if err := s.matches.DeleteLinesByPlayer(ctx, leaderboardID, userID); err != nil {
		errs = append(errs, fmt.Errorf("delete result lines: %w", err))
	}
	if err := s.matches.DeleteEmptyResults(ctx, leaderboardID); err != nil {
		errs = append(errs, fmt.Errorf("delete empty match results: %w", err))
	}
	if err := s.leaderboards.RemoveMember(ctx, leaderboardID, userID); err != nil {
		errs = append(errs, fmt.Errorf("remove leaderboard membership: %w", err))
	}
	return errors.Join(errs...)
}

func (s *SquadService) requireMember(ctx context.Context, squadID, userID string) (squad.Membership, error) {
	m, ok, err := s.squads.GetMember(ctx, squadID, userID)
	if err != nil {
		return squad.Membership{}, fmt.Errorf("get membership: %w", err)
	}
	if !ok {
		if _, exists, err := s.squads.GetByID(ctx, squadID); err != nil {
			return squad.Membership{}, fmt.Errorf("get squad: %w", err)
		} else if !exists {
			return squad.Membership{}, fmt.Errorf("%w: squad %s", ErrNotFound, squadID)
		}
		return squad.Membership{}, fmt.Errorf("%w: user %s is not a member of squad %s", ErrForbidden, userID, squadID)
	}
	return m, nil
}

func (s *SquadService) requireOwner(ctx context.Context, squadID, userID string) (squad.Membership, error) {
	m, err := s.requireMember(ctx, squadID, userID)
	if err != nil {
		return squad.Membership{}, err
	}
	if m.Role != squad.RoleOwner {
		return squad.Membership{}, fmt.Errorf("%w: user %s is not an owner of squad %s", ErrForbidden, userID, squadID)
	}
	return m, nil
}

func (s *SquadService) getTargetMember(ctx context.Context, squadID, targetUserID string) (squad.Membership, error) {
	target, ok, err := s.squads.GetMember(ctx, squadID, targetUserID)
	if err != nil {
		return squad.Membership{}, fmt.Errorf("get target membership: %w", err)
	}
	if !ok {
		return squad.Membership{}, fmt.Errorf("%w: user %s is not a member of squad %s", ErrNotFound, targetUserID, squadID)
	}
	return target, nil
}
