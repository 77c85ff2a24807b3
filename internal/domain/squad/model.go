package squad

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleOwner  Role = "owner"
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleOwner
}

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Squad is a persistent group of players sharing chat and
// leaderboards. Names are unique case-insensitively.
type Squad struct {
	ID          string
	Name        string
	Description string
	Visibility  Visibility
	InviteCode  string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s Squad) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("squad id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("squad name is required")
	}
	if s.Visibility != VisibilityPublic && s.Visibility != VisibilityPrivate {
		return fmt.Errorf("squad visibility %q is not valid", s.Visibility)
	}
	if s.CreatedBy == "" {
		return fmt.Errorf("squad creator is required")
	}

	return nil
}

// Membership ties one user to one squad with a role. The
// (squad, user) pair is unique.
type Membership struct {
	SquadID  string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

func (m Membership) Validate() error {
	if m.SquadID == "" {
		return fmt.Errorf("membership squad id is required")
	}
	if m.UserID == "" {
		return fmt.Errorf("membership user id is required")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("membership role %q is not valid", m.Role)
	}

	return nil
}
