package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/squadscore/squadscore/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	results map[string]match.Result
	order   []string
	lines   map[string][]match.ResultLine
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		results: make(map[string]match.Result),
		lines:   make(map[string][]match.ResultLine),
	}
}

func (r *MatchRepository) Create(_ context.Context, result match.Result, lines []match.ResultLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.results[result.ID]; ok {
		return errDuplicate("match_results_pkey")
	}
	r.results[result.ID] = result
	r.order = append(r.order, result.ID)
	r.lines[result.ID] = append([]match.ResultLine(nil), lines...)
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchResultID string) (match.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[matchResultID]
	if !ok {
		return match.Result{}, false, nil
	}
	return result, true, nil
}

func (r *MatchRepository) ListPendingByLeaderboards(_ context.Context, leaderboardIDs []string) ([]match.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]struct{}, len(leaderboardIDs))
	for _, id := range leaderboardIDs {
		want[id] = struct{}{}
	}

	var out []match.Result
	for _, id := range r.order {
		result := r.results[id]
		if result.Status != match.StatusPending {
			continue
		}
		if _, ok := want[result.LeaderboardID]; ok {
			out = append(out, result)
		}
	}
	return out, nil
}

func (r *MatchRepository) UpdateStatus(_ context.Context, matchResultID string, status match.Status, reviewedBy string, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, ok := r.results[matchResultID]
	if !ok {
		return fmt.Errorf("match result %s not found", matchResultID)
	}
	result.Status = status
	result.ReviewedBy = &reviewedBy
	result.ReviewedAt = &reviewedAt
	r.results[matchResultID] = result
	return nil
}

func (r *MatchRepository) ListLines(_ context.Context, matchResultID string) ([]match.ResultLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]match.ResultLine(nil), r.lines[matchResultID]...), nil
}

func (r *MatchRepository) ListApprovedLines(_ context.Context, leaderboardID string) ([]match.ResultLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []match.ResultLine
	for _, id := range r.order {
		result := r.results[id]
		if result.LeaderboardID != leaderboardID || result.Status != match.StatusApproved {
			continue
		}
		out = append(out, r.lines[id]...)
	}
	return out, nil
}

// deleteByLeaderboard removes the leaderboard's results and their
// lines.
func (r *MatchRepository) deleteByLeaderboard(leaderboardID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	for _, id := range r.order {
		if r.results[id].LeaderboardID == leaderboardID {
			delete(r.results, id)
			delete(r.lines, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

func (r *MatchRepository) DeleteLinesByPlayer(_ context.Context, leaderboardID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if r.results[id].LeaderboardID != leaderboardID {
			continue
		}
		kept := r.lines[id][:0]
		for _, line := range r.lines[id] {
			if line.PlayerID != playerID {
				kept = append(kept, line)
			}
		}
		r.lines[id] = kept
	}
	return nil
}

func (r *MatchRepository) DeleteEmptyResults(_ context.Context, leaderboardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	for _, id := range r.order {
		result := r.results[id]
		if result.LeaderboardID == leaderboardID && len(r.lines[id]) == 0 {
			delete(r.results, id)
			delete(r.lines, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return nil
}
