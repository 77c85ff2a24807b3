package usecase

import (
	"errors"
	"testing"

	"github.com/squadscore/squadscore/internal/domain/standings"
	"github.com/squadscore/squadscore/internal/infrastructure/repository/memory"
)

func (f *fixture) createBoard(t *testing.T, adminID string, memberIDs ...string) string {
	t.Helper()

	board, err := f.boardSvc.Create(t.Context(), CreateLeaderboardInput{
		UserID:        adminID,
		Name:          "Weekly Ladder",
		GameName:      "Rocket League",
		MemberUserIDs: memberIDs,
	})
	if err != nil {
		t.Fatalf("create leaderboard: %v", err)
	}
	return board.ID
}

func (f *fixture) approveResult(t *testing.T, boardID, adminID string, lines []SubmitResultLineInput) {
	t.Helper()

	submitted, err := f.matchSvc.Submit(t.Context(), SubmitMatchResultInput{
		UserID:        adminID,
		LeaderboardID: boardID,
		Lines:         lines,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.matchSvc.Approve(t.Context(), submitted.ID, adminID); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

func TestLeaderboardService_Create_SquadLinkRequiresMembership(t *testing.T) {
	f := newFixture(t)

	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	_, err := f.boardSvc.Create(t.Context(), CreateLeaderboardInput{
		UserID:   memory.UserIDBima,
		Name:     "Ladder",
		GameName: "Chess",
		SquadID:  created.ID,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("create with foreign squad error = %v, want ErrForbidden", err)
	}
}

func TestLeaderboardService_Create_RequiresNameAndGame(t *testing.T) {
	f := newFixture(t)

	if _, err := f.boardSvc.Create(t.Context(), CreateLeaderboardInput{
		UserID:   memory.UserIDAri,
		GameName: "Chess",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing name error = %v, want ErrInvalidInput", err)
	}

	if _, err := f.boardSvc.Create(t.Context(), CreateLeaderboardInput{
		UserID: memory.UserIDAri,
		Name:   "Ladder",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing game error = %v, want ErrInvalidInput", err)
	}
}

func TestLeaderboardService_ListMine_Dedupes(t *testing.T) {
	f := newFixture(t)

	// Admin is also added as the first member, so both lookups return
	// the same board.
	boardID := f.createBoard(t, memory.UserIDAri)

	mine, err := f.boardSvc.ListMine(t.Context(), memory.UserIDAri)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != boardID {
		t.Fatalf("list mine = %+v, want exactly board %s", mine, boardID)
	}
}

func TestLeaderboardService_GetWithEntries_TieScenario(t *testing.T) {
	f := newFixture(t)

	boardID := f.createBoard(t, memory.UserIDAri, memory.UserIDBima)

	win := standings.OutcomeWin
	loss := standings.OutcomeLoss
	ten, five, fifteen := 10, 5, 15
	f.approveResult(t, boardID, memory.UserIDAri, []SubmitResultLineInput{
		{PlayerID: memory.UserIDAri, Score: &ten, Outcome: &win},
		{PlayerID: memory.UserIDAri, Score: &five, Outcome: &loss},
		{PlayerID: memory.UserIDBima, Score: &fifteen, Outcome: &win},
	})

	view, err := f.boardSvc.GetWithEntries(t.Context(), boardID, memory.UserIDBima)
	if err != nil {
		t.Fatalf("get with entries: %v", err)
	}

	if len(view.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(view.Entries))
	}
	first, second := view.Entries[0], view.Entries[1]
	if first.PlayerID != memory.UserIDAri || second.PlayerID != memory.UserIDBima {
		t.Fatalf("tie order changed: %+v", view.Entries)
	}
	if first.Rank != 1 || second.Rank != 1 {
		t.Fatalf("tied ranks = %d, %d, want 1, 1", first.Rank, second.Rank)
	}
	if first.TotalScore != 15 || first.Wins != 1 || first.Losses != 1 {
		t.Fatalf("aggregate for first entry = %+v", first)
	}
	if first.Username != "ari" {
		t.Fatalf("entry username = %q, want ari", first.Username)
	}
}

func TestLeaderboardService_GetWithEntries_PendingExcluded(t *testing.T) {
	f := newFixture(t)

	boardID := f.createBoard(t, memory.UserIDAri)

	ten := 10
	if _, err := f.matchSvc.Submit(t.Context(), SubmitMatchResultInput{
		UserID:        memory.UserIDAri,
		LeaderboardID: boardID,
		Lines:         []SubmitResultLineInput{{PlayerID: memory.UserIDAri, Score: &ten}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	view, err := f.boardSvc.GetWithEntries(t.Context(), boardID, memory.UserIDAri)
	if err != nil {
		t.Fatalf("get with entries: %v", err)
	}
	if len(view.Entries) != 0 {
		t.Fatalf("pending result leaked into entries: %+v", view.Entries)
	}
}

func TestLeaderboardService_GetWithEntries_RequiresParticipant(t *testing.T) {
	f := newFixture(t)

	boardID := f.createBoard(t, memory.UserIDAri)

	if _, err := f.boardSvc.GetWithEntries(t.Context(), boardID, memory.UserIDCika); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider view error = %v, want ErrForbidden", err)
	}
}

func TestLeaderboardService_AddMembers_SkipsExisting(t *testing.T) {
	f := newFixture(t)

	boardID := f.createBoard(t, memory.UserIDAri, memory.UserIDBima)

	result, err := f.boardSvc.AddMembers(t.Context(), boardID, memory.UserIDAri, []string{
		memory.UserIDBima,
		memory.UserIDCika,
		memory.UserIDCika,
	})
	if err != nil {
		t.Fatalf("add members: %v", err)
	}
	if len(result.Added) != 1 || result.Added[0] != memory.UserIDCika {
		t.Fatalf("added = %v, want [%s]", result.Added, memory.UserIDCika)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != memory.UserIDBima {
		t.Fatalf("skipped = %v, want [%s]", result.Skipped, memory.UserIDBima)
	}
}

func TestLeaderboardService_AddMembers_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	boardID := f.createBoard(t, memory.UserIDAri, memory.UserIDBima)

	_, err := f.boardSvc.AddMembers(t.Context(), boardID, memory.UserIDBima, []string{memory.UserIDCika})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("add members by member error = %v, want ErrForbidden", err)
	}
}

func TestLeaderboardService_RemoveUser_Cascades(t *testing.T) {
	f := newFixture(t)

	boardID := f.createBoard(t, memory.UserIDAri, memory.UserIDBima)

	three := 3
	f.approveResult(t, boardID, memory.UserIDAri, []SubmitResultLineInput{
		{PlayerID: memory.UserIDBima, Score: &three},
	})

	if err := f.boardSvc.RemoveUser(t.Context(), boardID, memory.UserIDAri, memory.UserIDBima); err != nil {
		t.Fatalf("remove user: %v", err)
	}

	if member, _ := f.leaderboards.IsMember(t.Context(), boardID, memory.UserIDBima); member {
		t.Fatal("membership survived removal")
	}
	lines, _ := f.matches.ListApprovedLines(t.Context(), boardID)
	if len(lines) != 0 {
		t.Fatalf("result lines survived removal: %+v", lines)
	}
}

func TestLeaderboardService_Delete_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	boardID := f.createBoard(t, memory.UserIDAri, memory.UserIDBima)

	if err := f.boardSvc.Delete(t.Context(), boardID, memory.UserIDBima); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by member error = %v, want ErrForbidden", err)
	}
	if err := f.boardSvc.Delete(t.Context(), boardID, memory.UserIDAri); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := f.leaderboards.GetByID(t.Context(), boardID); ok {
		t.Fatal("board survived delete")
	}
}
