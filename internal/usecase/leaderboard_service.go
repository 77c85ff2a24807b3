package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/squadscore/squadscore/internal/domain/leaderboard"
	"github.com/squadscore/squadscore/internal/domain/match"
	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/domain/standings"
	"github.com/squadscore/squadscore/internal/domain/user"
	idgen "github.com/squadscore/squadscore/internal/platform/id"
)

type CreateLeaderboardInput struct {
	UserID        string
	Name          string
	GameName      string
	SquadID       string
	MemberUserIDs []string
}

type AddLeaderboardMembersResult struct {
	Added   []string
	Skipped []string
}

type LeaderboardEntry struct {
	PlayerID   string
	Username   string
	Rank       int
	TotalScore int
	Wins       int
	Losses     int
	Draws      int
}

type LeaderboardWithEntries struct {
	Leaderboard leaderboard.Leaderboard
	MemberCount int
	Entries     []LeaderboardEntry
}

// LeaderboardService owns leaderboard lifecycle and the ranked entry
// view recomputed from approved match results on every read.
type LeaderboardService struct {
	leaderboards leaderboard.Repository
	squads       squad.Repository
	matches      match.Repository
	users        user.Repository
	idGen        idgen.Generator
	now          func() time.Time
}

func NewLeaderboardService(
	leaderboards leaderboard.Repository,
	squads squad.Repository,
	matches match.Repository,
	users user.Repository,
	idGen idgen.Generator,
) *LeaderboardService {
	return &LeaderboardService{
		leaderboards: leaderboards,
		squads:       squads,
		matches:      matches,
		users:        users,
		idGen:        idGen,
		now:          time.Now,
	}
}

func (s *LeaderboardService) Create(ctx context.Context, input CreateLeaderboardInput) (leaderboard.Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.Create")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	input.GameName = strings.TrimSpace(input.GameName)
	input.SquadID = strings.TrimSpace(input.SquadID)
	if input.UserID == "" {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: leaderboard name is required", ErrInvalidInput)
	}
	if input.GameName == "" {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: game name is required", ErrInvalidInput)
	}

	var squadID *string
	if input.SquadID != "" {
		m, ok, err := s.squads.GetMember(ctx, input.SquadID, input.UserID)
		if err != nil {
			return leaderboard.Leaderboard{}, fmt.Errorf("get squad membership: %w", err)
		}
		if !ok {
			return leaderboard.Leaderboard{}, fmt.Errorf("%w: user %s is not a member of squad %s", ErrForbidden, input.UserID, input.SquadID)
		}
		squadID = &m.SquadID
	}

	leaderboardID, err := s.idGen.NewID()
	if err != nil {
		return leaderboard.Leaderboard{}, fmt.Errorf("generate leaderboard id: %w", err)
	}

	now := s.now().UTC()
	created := leaderboard.Leaderboard{
		ID:          leaderboardID,
		Name:        input.Name,
		GameName:    input.GameName,
		SquadID:     squadID,
		AdminUserID: input.UserID,
		Status:      leaderboard.StatusActive,
		CreatedAt:   now,
	}
	if err := created.Validate(); err != nil {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.leaderboards.Create(ctx, created); err != nil {
		return leaderboard.Leaderboard{}, fmt.Errorf("create leaderboard: %w", err)
	}

	initial := append([]string{input.UserID}, input.MemberUserIDs...)
	if _, err := s.addMembers(ctx, leaderboardID, initial, now); err != nil {
		return leaderboard.Leaderboard{}, err
	}

	return created, nil
}

// ListMine returns boards where the user is a member or the admin,
// deduplicated, newest first.
func (s *LeaderboardService) ListMine(ctx context.Context, userID string) ([]leaderboard.Leaderboard, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	asMember, err := s.leaderboards.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leaderboards by membership: %w", err)
	}
	asAdmin, err := s.leaderboards.ListByAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leaderboards by admin: %w", err)
	}

	seen := make(map[string]struct{}, len(asMember)+len(asAdmin))
	out := make([]leaderboard.Leaderboard, 0, len(asMember)+len(asAdmin))
	for _, l := range append(asMember, asAdmin...) {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (s *LeaderboardService) ListBySquad(ctx context.Context, squadID, userID string) ([]leaderboard.Leaderboard, error) {
	squadID = strings.TrimSpace(squadID)
	userID = strings.TrimSpace(userID)
	if squadID == "" || userID == "" {
		return nil, fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}

	if _, ok, err := s.squads.GetMember(ctx, squadID, userID); err != nil {
		return nil, fmt.Errorf("get squad membership: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("%w: user %s is not a member of squad %s", ErrForbidden, userID, squadID)
	}

	boards, err := s.leaderboards.ListBySquad(ctx, squadID)
	if err != nil {
		return nil, fmt.Errorf("list leaderboards by squad: %w", err)
	}
	return boards, nil
}

// GetWithEntries loads a board and recomputes its ranked entries from
// all approved result lines. There is no incremental cache to go
// stale.
func (s *LeaderboardService) GetWithEntries(ctx context.Context, leaderboardID, userID string) (LeaderboardWithEntries, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.GetWithEntries")
	defer span.End()

	leaderboardID = strings.TrimSpace(leaderboardID)
	userID = strings.TrimSpace(userID)
	if leaderboardID == "" || userID == "" {
		return LeaderboardWithEntries{}, fmt.Errorf("%w: leaderboard id and user id are required", ErrInvalidInput)
	}

	board, err := s.requireParticipant(ctx, leaderboardID, userID)
	if err != nil {
		return LeaderboardWithEntries{}, err
	}

	lines, err := s.matches.ListApprovedLines(ctx, leaderboardID)
	if err != nil {
		return LeaderboardWithEntries{}, fmt.Errorf("list approved result lines: %w", err)
	}

	ranked := standings.Rank(standings.Aggregate(toStandingsLines(lines)))

	playerIDs := make([]string, 0, len(ranked))
	for _, e := range ranked {
		playerIDs = append(playerIDs, e.PlayerID)
	}
	profiles, err := s.users.ListByIDs(ctx, playerIDs)
	if err != nil {
		return LeaderboardWithEntries{}, fmt.Errorf("list entry profiles: %w", err)
	}
	handleByID := make(map[string]string, len(profiles))
	for _, p := range profiles {
		handleByID[p.ID] = p.Handle()
	}

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for _, e := range ranked {
		entries = append(entries, LeaderboardEntry{
			PlayerID:   e.PlayerID,
			Username:   handleByID[e.PlayerID],
			Rank:       e.Rank,
			TotalScore: e.TotalScore,
			Wins:       e.Wins,
			Losses:     e.Losses,
			Draws:      e.Draws,
		})
	}

	count, err := s.leaderboards.CountMembers(ctx, leaderboardID)
	if err != nil {
		return LeaderboardWithEntries{}, fmt.Errorf("count leaderboard members: %w", err)
	}

	return LeaderboardWithEntries{
		Leaderboard: board,
		MemberCount: count,
		Entries:     entries,
	}, nil
}

func (s *LeaderboardService) AddMembers(ctx context.Context, leaderboardID, actingUserID string, userIDs []string) (AddLeaderboardMembersResult, error) {
	leaderboardID = strings.TrimSpace(leaderboardID)
	actingUserID = strings.TrimSpace(actingUserID)
	if leaderboardID == "" || actingUserID == "" {
		return AddLeaderboardMembersResult{}, fmt.Errorf("%w: leaderboard id and user id are required", ErrInvalidInput)
	}
	if len(userIDs) == 0 {
		return AddLeaderboardMembersResult{}, fmt.Errorf("%w: at least one user id is required", ErrInvalidInput)
	}

	if _, err := s.requireAdmin(ctx, leaderboardID, actingUserID); err != nil {
		return AddLeaderboardMembersResult{}, err
	}

	return s.addMembers(ctx, leaderboardID, userIDs, s.now().UTC())
}

func (s *LeaderboardService) addMembers(ctx context.Context, leaderboardID string, userIDs []string, joinedAt time.Time) (AddLeaderboardMembersResult, error) {
	var result AddLeaderboardMembersResult
	seen := make(map[string]struct{}, len(userIDs))
	for _, raw := range userIDs {
		userID := strings.TrimSpace(raw)
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		member, err := s.leaderboards.IsMember(ctx, leaderboardID, userID)
		if err != nil {
			return AddLeaderboardMembersResult{}, fmt.Errorf("check leaderboard membership for user=%s: %w", userID, err)
		}
		if member {
			result.Skipped = append(result.Skipped, userID)
			continue
		}

		err = s.leaderboards.AddMember(ctx, leaderboard.Membership{
			LeaderboardID: leaderboardID,
			UserID:        userID,
			JoinedAt:      joinedAt,
		})
		if err != nil {
			if isDuplicateConstraintError(err) {
				result.Skipped = append(result.Skipped, userID)
				continue
			}
			return AddLeaderboardMembersResult{}, fmt.Errorf("add leaderboard member user=%s: %w", userID, err)
		}
		result.Added = append(result.Added, userID)
	}

	return result, nil
}

// RemoveUser erases one user's presence on a single board: their
// result lines, any match results left empty, and their membership.
func (s *LeaderboardService) RemoveUser(ctx context.Context, leaderboardID, actingUserID, targetUserID string) error {
	leaderboardID = strings.TrimSpace(leaderboardID)
	actingUserID = strings.TrimSpace(actingUserID)
	targetUserID = strings.TrimSpace(targetUserID)
	if leaderboardID == "" || actingUserID == "" || targetUserID == "" {
		return fmt.Errorf("%w: leaderboard id, acting user id, and target user id are required", ErrInvalidInput)
	}

	if _, err := s.requireAdmin(ctx, leaderboardID, actingUserID); err != nil {
		return err
	}

	member, err := s.leaderboards.IsMember(ctx, leaderboardID, targetUserID)
	if err != nil {
		return fmt.Errorf("check leaderboard membership: %w", err)
	}
	if !member {
		return fmt.Errorf("%w: user %s is not on leaderboard %s", ErrNotFound, targetUserID, leaderboardID)
	}

	var errs []error
	if err := s.matches.DeleteLinesByPlayer(ctx, leaderboardID, targetUserID); err != nil {
		errs = append(errs, fmt.Errorf("delete result lines: %w", err))
	}
	if err := s.matches.DeleteEmptyResults(ctx, leaderboardID); err != nil {
		errs = append(errs, fmt.Errorf("delete empty match results: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("leaderboard cleanup for user=%s: %w", targetUserID, err)
	}

	if err := s.leaderboards.RemoveMember(ctx, leaderboardID, targetUserID); err != nil {
		return fmt.Errorf("remove leaderboard member: %w", err)
	}

	return nil
}

func (s *LeaderboardService) Delete(ctx context.Context, leaderboardID, actingUserID string) error {
	leaderboardID = strings.TrimSpace(leaderboardID)
	actingUserID = strings.TrimSpace(actingUserID)
	if leaderboardID == "" || actingUserID == "" {
		return fmt.Errorf("%w: leaderboard id and user id are required", ErrInvalidInput)
	}

	if _, err := s.requireAdmin(ctx, leaderboardID, actingUserID); err != nil {
		return err
	}

	if err := s.leaderboards.Delete(ctx, leaderboardID); err != nil {
		return fmt.Errorf("delete leaderboard: %w", err)
	}

	return nil
}

func (s *LeaderboardService) requireAdmin(ctx context.Context, leaderboardID, userID string) (leaderboard.Leaderboard, error) {
	board, exists, err := s.leaderboards.GetByID(ctx, leaderboardID)
	if err != nil {
		return leaderboard.Leaderboard{}, fmt.Errorf("get leaderboard: %w", err)
	}
	if !exists {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: leaderboard %s", ErrNotFound, leaderboardID)
	}
	if board.AdminUserID != userID {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: user %s is not the admin of leaderboard %s", ErrForbidden, userID, leaderboardID)
	}
	return board, nil
}

func (s *LeaderboardService) requireParticipant(ctx context.Context, leaderboardID, userID string) (leaderboard.Leaderboard, error) {
	board, exists, err := s.leaderboards.GetByID(ctx, leaderboardID)
	if err != nil {
		return leaderboard.Leaderboard{}, fmt.Errorf("get leaderboard: %w", err)
	}
	if !exists {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: leaderboard %s", ErrNotFound, leaderboardID)
	}
	if board.AdminUserID == userID {
		return board, nil
	}
	member, err := s.leaderboards.IsMember(ctx, leaderboardID, userID)
	if err != nil {
		return leaderboard.Leaderboard{}, fmt.Errorf("check leaderboard membership: %w", err)
	}
	if !member {
		return leaderboard.Leaderboard{}, fmt.Errorf("%w: user %s is not on leaderboard %s", ErrForbidden, userID, leaderboardID)
	}
	return board, nil
}

func toStandingsLines(lines []match.ResultLine) []standings.Line {
	out := make([]standings.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, standings.Line{
			PlayerID: l.PlayerID,
			Score:    l.Score,
			Outcome:  l.Outcome,
		})
	}
	return out
}
