package match

import (
	"fmt"
	"time"

	"github.com/squadscore/squadscore/internal/domain/standings"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Result is a submitted record of one competitive event, gated by an
// approval workflow. Only approved results contribute to standings.
type Result struct {
	ID            string
	LeaderboardID string
	Status        Status
	SubmittedBy   string
	ReviewedBy    *string
	CreatedAt     time.Time
	ReviewedAt    *time.Time
}

func (r Result) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("match result id is required")
	}
	if r.LeaderboardID == "" {
		return fmt.Errorf("match result leaderboard id is required")
	}
	if r.SubmittedBy == "" {
		return fmt.Errorf("match result submitter is required")
	}

	return nil
}

// ResultLine is one player's contribution within a match result.
// Immutable once created except via deletion.
type ResultLine struct {
	ID            string
	MatchResultID string
	PlayerID      string
	Score         *int
	Outcome       *standings.Outcome
}

func (l ResultLine) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("result line id is required")
	}
	if l.MatchResultID == "" {
		return fmt.Errorf("result line match result id is required")
	}
	if l.PlayerID == "" {
		return fmt.Errorf("result line player id is required")
	}
	if l.Outcome != nil {
		switch *l.Outcome {
		case standings.OutcomeWin, standings.OutcomeLoss, standings.OutcomeDraw:
		default:
			return fmt.Errorf("result line outcome %q is not valid", *l.Outcome)
		}
	}

	return nil
}
