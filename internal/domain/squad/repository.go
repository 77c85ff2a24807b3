package squad

import "context"

// Repository describes squad and membership persistence needs from use
// cases. Lookups return (zero value, false, nil) when the row is
// absent.
type Repository interface {
	// CreateWithOwner persists the squad and its founding owner
	// membership as one atomic write; neither row is visible if the
	// other fails.
	CreateWithOwner(ctx context.Context, s Squad, owner Membership) error
	Update(ctx context.Context, s Squad) error
	Delete(ctx context.Context, squadID string) error
	GetByID(ctx context.Context, squadID string) (Squad, bool, error)
	GetByName(ctx context.Context, name string) (Squad, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (Squad, bool, error)
	InviteCodeExists(ctx context.Context, inviteCode string) (bool, error)
	ListBySquadIDs(ctx context.Context, squadIDs []string) ([]Squad, error)

	AddMember(ctx context.Context, m Membership) error
	GetMember(ctx context.Context, squadID, userID string) (Membership, bool, error)
	ListMembers(ctx context.Context, squadID string) ([]Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]Membership, error)
	CountMembers(ctx context.Context, squadID string) (int, error)
	UpdateMemberRole(ctx context.Context, squadID, userID string, role Role) error
	RemoveMember(ctx context.Context, squadID, userID string) error
}
