package leaderboard

import "context"

// Repository describes leaderboard persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, l Leaderboard) error
	Delete(ctx context.Context, leaderboardID string) error
	GetByID(ctx context.Context, leaderboardID string) (Leaderboard, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Leaderboard, error)
	ListByAdmin(ctx context.Context, adminUserID string) ([]Leaderboard, error)
	ListBySquad(ctx context.Context, squadID string) ([]Leaderboard, error)

	AddMember(ctx context.Context, m Membership) error
	IsMember(ctx context.Context, leaderboardID, userID string) (bool, error)
	ListMembers(ctx context.Context, leaderboardID string) ([]Membership, error)
	CountMembers(ctx context.Context, leaderboardID string) (int, error)
	RemoveMember(ctx context.Context, leaderboardID, userID string) error
}
