package leaderboard

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Leaderboard is a ranked competition scoped to a game, optionally
// tied to a squad.
type Leaderboard struct {
	ID          string
	Name        string
	GameName    string
	SquadID     *string
	AdminUserID string
	Status      Status
	CreatedAt   time.Time
}

func (l Leaderboard) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("leaderboard id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("leaderboard name is required")
	}
	if l.GameName == "" {
		return fmt.Errorf("leaderboard game name is required")
	}
	if l.AdminUserID == "" {
		return fmt.Errorf("leaderboard admin is required")
	}

	return nil
}

// Membership ties one user to one leaderboard. The admin is not
// implicitly a member.
type Membership struct {
	LeaderboardID string
	UserID        string
	JoinedAt      time.Time
}
