package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/domain/standings"
	"github.com/squadscore/squadscore/internal/infrastructure/repository/memory"
)

func TestSquadService_Create_SetsOwnerAndInviteCode(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	if got := f.memberRole(t, created.ID, memory.UserIDAri); got != squad.RoleOwner {
		t.Fatalf("creator role = %s, want owner", got)
	}

	codePattern := regexp.MustCompile(`^[A-Z2-9]{4}-[A-Z2-9]{4}-[A-Z2-9]{4}$`)
	if !codePattern.MatchString(created.InviteCode) {
		t.Fatalf("invite code %q does not match expected shape", created.InviteCode)
	}

	if _, ok, err := f.chats.GetRoomBySquad(t.Context(), created.ID); err != nil || !ok {
		t.Fatalf("chat room after create = (%v, %v), want provisioned", ok, err)
	}
}

func TestSquadService_Create_DuplicateNameCaseInsensitive(t *testing.T) {
	f := newFixture(t)

	f.createSquad(t, memory.UserIDAri, "Night Raiders")

	_, err := f.squadSvc.Create(t.Context(), CreateSquadInput{
		UserID: memory.UserIDBima,
		Name:   "NIGHT raiders",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate name error = %v, want ErrConflict", err)
	}
}

func TestSquadService_JoinByInviteCode(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	joined, err := f.squadSvc.JoinByInviteCode(t.Context(), memory.UserIDBima, "  "+created.InviteCode+" ")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.ID != created.ID {
		t.Fatalf("joined squad = %s, want %s", joined.ID, created.ID)
	}
	if got := f.memberRole(t, created.ID, memory.UserIDBima); got != squad.RoleMember {
		t.Fatalf("joiner role = %s, want member", got)
	}

	if _, err := f.squadSvc.JoinByInviteCode(t.Context(), memory.UserIDBima, created.InviteCode); !errors.Is(err, ErrConflict) {
		t.Fatalf("second join error = %v, want ErrConflict", err)
	}
}

func TestSquadService_JoinByInviteCode_UnknownCode(t *testing.T) {
	f := newFixture(t)

	if _, err := f.squadSvc.JoinByInviteCode(t.Context(), memory.UserIDBima, "AAAA-BBBB-CCCC"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown code error = %v, want ErrNotFound", err)
	}
}

func TestSquadService_Promote(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleMember)

	if err := f.squadSvc.Promote(t.Context(), created.ID, memory.UserIDAri, memory.UserIDBima); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got := f.memberRole(t, created.ID, memory.UserIDBima); got != squad.RoleOwner {
		t.Fatalf("role after promote = %s, want owner", got)
	}

	err := f.squadSvc.Promote(t.Context(), created.ID, memory.UserIDAri, memory.UserIDBima)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("promote owner error = %v, want ErrInvalidInput", err)
	}
}

func TestSquadService_Promote_RequiresOwner(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleMember)
	f.addMember(t, created.ID, memory.UserIDCika, squad.RoleMember)

	err := f.squadSvc.Promote(t.Context(), created.ID, memory.UserIDBima, memory.UserIDCika)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("promote by member error = %v, want ErrForbidden", err)
	}
	if got := f.memberRole(t, created.ID, memory.UserIDCika); got != squad.RoleMember {
		t.Fatalf("role changed despite rejection: %s", got)
	}
}

func TestSquadService_Demote(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleOwner)

	if err := f.squadSvc.Demote(t.Context(), created.ID, memory.UserIDAri, memory.UserIDBima); err != nil {
		t.Fatalf("demote: %v", err)
	}
	if got := f.memberRole(t, created.ID, memory.UserIDBima); got != squad.RoleMember {
		t.Fatalf("role after demote = %s, want member", got)
	}
}

func TestSquadService_Demote_SelfForbidden(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	err := f.squadSvc.Demote(t.Context(), created.ID, memory.UserIDAri, memory.UserIDAri)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("self-demote error = %v, want ErrForbidden", err)
	}
	if got := f.memberRole(t, created.ID, memory.UserIDAri); got != squad.RoleOwner {
		t.Fatalf("role changed despite rejection: %s", got)
	}
}

func TestSquadService_Demote_MemberTargetRejected(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleMember)

	err := f.squadSvc.Demote(t.Context(), created.ID, memory.UserIDAri, memory.UserIDBima)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("demote member error = %v, want ErrInvalidInput", err)
	}
}

func TestSquadService_Remove_OwnerTargetRejected(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleOwner)
	f.addMember(t, created.ID, memory.UserIDCika, squad.RoleMember)

	err := f.squadSvc.Remove(t.Context(), created.ID, memory.UserIDAri, memory.UserIDBima)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("remove owner error = %v, want ErrForbidden", err)
	}
	if got := f.memberRole(t, created.ID, memory.UserIDBima); got != squad.RoleOwner {
		t.Fatalf("owner membership mutated despite rejection: %s", got)
	}
}

func TestSquadService_Remove_SelfForbidden(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	err := f.squadSvc.Remove(t.Context(), created.ID, memory.UserIDAri, memory.UserIDAri)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("self-remove error = %v, want ErrForbidden", err)
	}
}

func TestSquadService_Remove_CascadesLeaderboardCleanup(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleMember)

	board, err := f.boardSvc.Create(t.Context(), CreateLeaderboardInput{
		UserID:        memory.UserIDAri,
		Name:          "Weekly Ladder",
		GameName:      "Rocket League",
		SquadID:       created.ID,
		MemberUserIDs: []string{memory.UserIDBima},
	})
	if err != nil {
		t.Fatalf("create leaderboard: %v", err)
	}

	win := standings.OutcomeWin
	loss := standings.OutcomeLoss
	ten, three := 10, 3
	submitted, err := f.matchSvc.Submit(t.Context(), SubmitMatchResultInput{
		UserID:        memory.UserIDAri,
		LeaderboardID: board.ID,
		Lines: []SubmitResultLineInput{
			{PlayerID: memory.UserIDAri, Score: &ten, Outcome: &win},
			{PlayerID: memory.UserIDBima, Score: &three, Outcome: &loss},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.matchSvc.Approve(t.Context(), submitted.ID, memory.UserIDAri); err != nil {
		t.Fatalf("approve: %v", err)
	}

	soloID := 0
	solo, err := f.matchSvc.Submit(t.Context(), SubmitMatchResultInput{
		UserID:        memory.UserIDBima,
		LeaderboardID: board.ID,
		Lines: []SubmitResultLineInput{
			{PlayerID: memory.UserIDBima, Score: &soloID},
		},
	})
	if err != nil {
		t.Fatalf("submit solo: %v", err)
	}

	if err := f.squadSvc.Remove(t.Context(), created.ID, memory.UserIDAri, memory.UserIDBima); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, ok, _ := f.squads.GetMember(t.Context(), created.ID, memory.UserIDBima); ok {
		t.Fatal("squad membership survived removal")
	}
	if member, _ := f.leaderboards.IsMember(t.Context(), board.ID, memory.UserIDBima); member {
		t.Fatal("leaderboard membership survived removal")
	}

	lines, err := f.matches.ListApprovedLines(t.Context(), board.ID)
	if err != nil {
		t.Fatalf("list approved lines: %v", err)
	}
	for _, line := range lines {
		if line.PlayerID == memory.UserIDBima {
			t.Fatalf("result line for removed user survived: %+v", line)
		}
	}

	if _, ok, _ := f.matches.GetByID(t.Context(), solo.ID); ok {
		t.Fatal("match result left empty by the cascade was not deleted")
	}
}

func TestSquadService_ListMembers_RequiresMembership(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	if _, err := f.squadSvc.ListMembers(t.Context(), created.ID, memory.UserIDBima); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-member list error = %v, want ErrForbidden", err)
	}

	details, err := f.squadSvc.ListMembers(t.Context(), created.ID, memory.UserIDAri)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(details) != 1 || details[0].Username != "ari" {
		t.Fatalf("member details = %+v", details)
	}
}

func TestSquadService_ListMine_IncludesRoleAndCount(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleMember)

	mine, err := f.squadSvc.ListMine(t.Context(), memory.UserIDBima)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("got %d squads, want 1", len(mine))
	}
	if mine[0].Role != squad.RoleMember || mine[0].MemberCount != 2 {
		t.Fatalf("list mine entry = %+v", mine[0])
	}
}

func TestSquadService_Delete_RequiresOwnerAndCascades(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")
	f.addMember(t, created.ID, memory.UserIDBima, squad.RoleMember)

	board, err := f.boardSvc.Create(t.Context(), CreateLeaderboardInput{
		UserID:   memory.UserIDAri,
		Name:     "Weekly Ladder",
		GameName: "Rocket League",
		SquadID:  created.ID,
	})
	if err != nil {
		t.Fatalf("create leaderboard: %v", err)
	}

	score := 7
	result, err := f.matchSvc.Submit(t.Context(), SubmitMatchResultInput{
		UserID:        memory.UserIDAri,
		LeaderboardID: board.ID,
		Lines:         []SubmitResultLineInput{{PlayerID: memory.UserIDAri, Score: &score}},
	})
	if err != nil {
		t.Fatalf("submit result: %v", err)
	}

	if err := f.squadSvc.Delete(t.Context(), created.ID, memory.UserIDBima); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by member error = %v, want ErrForbidden", err)
	}

	if err := f.squadSvc.Delete(t.Context(), created.ID, memory.UserIDAri); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := f.squads.GetByID(t.Context(), created.ID); ok {
		t.Fatal("squad survived delete")
	}
	if _, ok, _ := f.leaderboards.GetByID(t.Context(), board.ID); ok {
		t.Fatal("squad leaderboard survived delete")
	}
	if _, ok, _ := f.matches.GetByID(t.Context(), result.ID); ok {
		t.Fatal("match result survived delete")
	}
	if _, ok, _ := f.chats.GetRoomBySquad(t.Context(), created.ID); ok {
		t.Fatal("chat room survived delete")
	}
}

type failingSquadRepository struct {
	*memory.SquadRepository
	createErr error
}

func (r *failingSquadRepository) CreateWithOwner(ctx context.Context, s squad.Squad, owner squad.Membership) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.SquadRepository.CreateWithOwner(ctx, s, owner)
}

func TestSquadService_Create_FailedWriteLeavesNoOrphan(t *testing.T) {
	f := newFixture(t)

	repo := &failingSquadRepository{
		SquadRepository: f.squads,
		createErr:       errors.New("connection reset"),
	}
	svc := NewSquadService(
		repo, f.leaderboards, f.matches, f.chats, f.users,
		&seqIDGenerator{prefix: "squad"}, nil,
	)

	if _, err := svc.Create(t.Context(), CreateSquadInput{UserID: memory.UserIDAri, Name: "Night Raiders"}); err == nil {
		t.Fatal("expected create to fail")
	}
	if _, exists, err := f.squads.GetByName(t.Context(), "Night Raiders"); err != nil || exists {
		t.Fatalf("squad after failed create = (%v, %v), want absent", exists, err)
	}

	repo.createErr = nil
	created, err := svc.Create(t.Context(), CreateSquadInput{UserID: memory.UserIDAri, Name: "Night Raiders"})
	if err != nil {
		t.Fatalf("create after recovery: %v", err)
	}
	member, ok, err := f.squads.GetMember(t.Context(), created.ID, memory.UserIDAri)
	if err != nil || !ok {
		t.Fatalf("owner membership = (%v, %v), want present", ok, err)
	}
	if member.Role != squad.RoleOwner {
		t.Fatalf("creator role = %s, want owner", member.Role)
	}
}
