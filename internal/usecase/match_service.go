package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/squadscore/squadscore/internal/domain/leaderboard"
	"github.com/squadscore/squadscore/internal/domain/match"
	"github.com/squadscore/squadscore/internal/domain/standings"
	idgen "github.com/squadscore/squadscore/internal/platform/id"
	"github.com/squadscore/squadscore/internal/platform/realtime"
)

type SubmitResultLineInput struct {
	PlayerID string
	Score    *int
	Outcome  *standings.Outcome
}

type SubmitMatchResultInput struct {
	UserID        string
	LeaderboardID string
	Lines         []SubmitResultLineInput
}

// MatchService owns the submit/approve/reject workflow for match
// results. Only approved results feed the standings.
type MatchService struct {
	matches      match.Repository
	leaderboards leaderboard.Repository
	idGen        idgen.Generator
	broker       *realtime.Broker
	now          func() time.Time
}

func NewMatchService(
	matches match.Repository,
	leaderboards leaderboard.Repository,
	idGen idgen.Generator,
	broker *realtime.Broker,
) *MatchService {
	return &MatchService{
		matches:      matches,
		leaderboards: leaderboards,
		idGen:        idGen,
		broker:       broker,
		now:          time.Now,
	}
}

func (s *MatchService) Submit(ctx context.Context, input SubmitMatchResultInput) (match.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Submit")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.LeaderboardID = strings.TrimSpace(input.LeaderboardID)
	if input.UserID == "" {
		return match.Result{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.LeaderboardID == "" {
		return match.Result{}, fmt.Errorf("%w: leaderboard id is required", ErrInvalidInput)
	}
	if len(input.Lines) == 0 {
		return match.Result{}, fmt.Errorf("%w: at least one result line is required", ErrInvalidInput)
	}

	board, exists, err := s.leaderboards.GetByID(ctx, input.LeaderboardID)
	if err != nil {
		return match.Result{}, fmt.Errorf("get leaderboard: %w", err)
	}
	if !exists {
		return match.Result{}, fmt.Errorf("%w: leaderboard %s", ErrNotFound, input.LeaderboardID)
	}
	if board.AdminUserID != input.UserID {
		member, err := s.leaderboards.IsMember(ctx, input.LeaderboardID, input.UserID)
		if err != nil {
			return match.Result{}, fmt.Errorf("check leaderboard membership: %w", err)
		}
		if !member {
			return match.Result{}, fmt.Errorf("%w: user %s is not on leaderboard %s", ErrForbidden, input.UserID, input.LeaderboardID)
		}
	}

	resultID, err := s.idGen.NewID()
	if err != nil {
		return match.Result{}, fmt.Errorf("generate match result id: %w", err)
	}

	result := match.Result{
		ID:            resultID,
		LeaderboardID: input.LeaderboardID,
		Status:        match.StatusPending,
		SubmittedBy:   input.UserID,
		CreatedAt:     s.now().UTC(),
	}
	if err := result.Validate(); err != nil {
		return match.Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lines := make([]match.ResultLine, 0, len(input.Lines))
	for i, in := range input.Lines {
		lineID, err := s.idGen.NewID()
		if err != nil {
			return match.Result{}, fmt.Errorf("generate result line id: %w", err)
		}
		line := match.ResultLine{
			ID:            lineID,
			MatchResultID: resultID,
			PlayerID:      strings.TrimSpace(in.PlayerID),
			Score:         in.Score,
			Outcome:       in.Outcome,
		}
		if err := line.Validate(); err != nil {
			return match.Result{}, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, i, err)
		}
		lines = append(lines, line)
	}

	if err := s.matches.Create(ctx, result, lines); err != nil {
		return match.Result{}, fmt.Errorf("create match result: %w", err)
	}

	return result, nil
}

// ListPending returns pending results across every board the user
// administers.
func (s *MatchService) ListPending(ctx context.Context, userID string) ([]match.Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	boards, err := s.leaderboards.ListByAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list administered leaderboards: %w", err)
	}
	if len(boards) == 0 {
		return []match.Result{}, nil
	}

	boardIDs := make([]string, 0, len(boards))
	for _, b := range boards {
		boardIDs = append(boardIDs, b.ID)
	}

	pending, err := s.matches.ListPendingByLeaderboards(ctx, boardIDs)
	if err != nil {
		return nil, fmt.Errorf("list pending match results: %w", err)
	}
	return pending, nil
}

func (s *MatchService) Lines(ctx context.Context, matchResultID, userID string) ([]match.ResultLine, error) {
	matchResultID = strings.TrimSpace(matchResultID)
	userID = strings.TrimSpace(userID)
	if matchResultID == "" || userID == "" {
		return nil, fmt.Errorf("%w: match result id and user id are required", ErrInvalidInput)
	}

	if _, err := s.requireReviewable(ctx, matchResultID, userID, false); err != nil {
		return nil, err
	}

	lines, err := s.matches.ListLines(ctx, matchResultID)
	if err != nil {
		return nil, fmt.Errorf("list result lines: %w", err)
	}
	return lines, nil
}

// Approve moves a pending result to approved and notifies leaderboard
// subscribers that standings changed.
func (s *MatchService) Approve(ctx context.Context, matchResultID, userID string) (match.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Approve")
	defer span.End()

	result, err := s.review(ctx, matchResultID, userID, match.StatusApproved)
	if err != nil {
		return match.Result{}, err
	}

	if s.broker != nil {
		s.broker.Publish(ctx, realtime.Event{
			Topic:   realtime.LeaderboardTopic(result.LeaderboardID),
			Kind:    "leaderboard.updated",
			Payload: map[string]string{"match_result_id": result.ID},
		})
	}

	return result, nil
}

func (s *MatchService) Reject(ctx context.Context, matchResultID, userID string) (match.Result, error) {
	return s.review(ctx, matchResultID, userID, match.StatusRejected)
}

func (s *MatchService) review(ctx context.Context, matchResultID, userID string, status match.Status) (match.Result, error) {
	matchResultID = strings.TrimSpace(matchResultID)
	userID = strings.TrimSpace(userID)
	if matchResultID == "" || userID == "" {
		return match.Result{}, fmt.Errorf("%w: match result id and user id are required", ErrInvalidInput)
	}

	result, err := s.requireReviewable(ctx, matchResultID, userID, true)
	if err != nil {
		return match.Result{}, err
	}

	reviewedAt := s.now().UTC()
	if err := s.matches.UpdateStatus(ctx, matchResultID, status, userID, reviewedAt); err != nil {
		return match.Result{}, fmt.Errorf("update match result status: %w", err)
	}

	result.Status = status
	result.ReviewedBy = &userID
	result.ReviewedAt = &reviewedAt
	return result, nil
}

// requireReviewable loads the result and checks that the user admins
// its leaderboard. With mustBePending it additionally rejects results
// that were already reviewed.
func (s *MatchService) requireReviewable(ctx context.Context, matchResultID, userID string, mustBePending bool) (match.Result, error) {
	result, exists, err := s.matches.GetByID(ctx, matchResultID)
	if err != nil {
		return match.Result{}, fmt.Errorf("get match result: %w", err)
	}
	if !exists {
		return match.Result{}, fmt.Errorf("%w: match result %s", ErrNotFound, matchResultID)
	}

	board, exists, err := s.leaderboards.GetByID(ctx, result.LeaderboardID)
	if err != nil {
		return match.Result{}, fmt.Errorf("get leaderboard for review: %w", err)
	}
	if !exists {
		return match.Result{}, fmt.Errorf("%w: leaderboard %s", ErrNotFound, result.LeaderboardID)
	}
	if board.AdminUserID != userID {
		return match.Result{}, fmt.Errorf("%w: user %s is not the admin of leaderboard %s", ErrForbidden, userID, board.ID)
	}

	if mustBePending && result.Status != match.StatusPending {
		return match.Result{}, fmt.Errorf("%w: match result %s is already %s", ErrConflict, matchResultID, result.Status)
	}

	return result, nil
}
