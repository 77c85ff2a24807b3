package match

import (
	"context"
	"time"
)

// Repository describes match result persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, result Result, lines []ResultLine) error
	GetByID(ctx context.Context, matchResultID string) (Result, bool, error)
	ListPendingByLeaderboards(ctx context.Context, leaderboardIDs []string) ([]Result, error)
	UpdateStatus(ctx context.Context, matchResultID string, status Status, reviewedBy string, reviewedAt time.Time) error

	ListLines(ctx context.Context, matchResultID string) ([]ResultLine, error)
	ListApprovedLines(ctx context.Context, leaderboardID string) ([]ResultLine, error)
	DeleteLinesByPlayer(ctx context.Context, leaderboardID, playerID string) error
	DeleteEmptyResults(ctx context.Context, leaderboardID string) error
}
