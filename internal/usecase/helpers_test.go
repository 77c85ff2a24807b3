package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/infrastructure/repository/memory"
	"github.com/squadscore/squadscore/internal/platform/realtime"
)

type seqIDGenerator struct {
	prefix string
	next   int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type fixture struct {
	users        *memory.UserRepository
	squads       *memory.SquadRepository
	leaderboards *memory.LeaderboardRepository
	matches      *memory.MatchRepository
	chats        *memory.ChatRepository
	broker       *realtime.Broker

	squadSvc *SquadService
	boardSvc *LeaderboardService
	matchSvc *MatchService
	chatSvc  *ChatService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:        memory.NewUserRepository(memory.SeedUsers()),
		squads:       memory.NewSquadRepository(),
		leaderboards: memory.NewLeaderboardRepository(),
		matches:      memory.NewMatchRepository(),
		chats:        memory.NewChatRepository(),
		broker:       realtime.NewBroker(8),
	}
	memory.Cascade(f.squads, f.leaderboards, f.matches, f.chats)
	t.Cleanup(f.broker.Close)

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	f.squadSvc = NewSquadService(
		f.squads, f.leaderboards, f.matches, f.chats, f.users,
		&seqIDGenerator{prefix: "squad"}, nil,
	)
	f.squadSvc.now = func() time.Time { return now }

	f.boardSvc = NewLeaderboardService(
		f.leaderboards, f.squads, f.matches, f.users,
		&seqIDGenerator{prefix: "board"},
	)
	f.boardSvc.now = func() time.Time { return now }

	f.matchSvc = NewMatchService(
		f.matches, f.leaderboards,
		&seqIDGenerator{prefix: "match"}, f.broker,
	)
	f.matchSvc.now = func() time.Time { return now }

	f.chatSvc = NewChatService(
		f.chats, f.squads, f.users,
		&seqIDGenerator{prefix: "chat"}, f.broker,
	)
	f.chatSvc.now = func() time.Time { return now }

	return f
}

func (f *fixture) createSquad(t *testing.T, ownerID, name string) squad.Squad {
	t.Helper()

	created, err := f.squadSvc.Create(t.Context(), CreateSquadInput{
		UserID:     ownerID,
		Name:       name,
		Visibility: squad.VisibilityPrivate,
	})
	if err != nil {
		t.Fatalf("create squad %s: %v", name, err)
	}
	return created
}

func (f *fixture) addMember(t *testing.T, squadID, userID string, role squad.Role) {
	t.Helper()

	err := f.squads.AddMember(context.Background(), squad.Membership{
		SquadID:  squadID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("add member %s to squad %s: %v", userID, squadID, err)
	}
}

func (f *fixture) memberRole(t *testing.T, squadID, userID string) squad.Role {
	t.Helper()

	m, ok, err := f.squads.GetMember(context.Background(), squadID, userID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if !ok {
		t.Fatalf("membership squad=%s user=%s missing", squadID, userID)
	}
	return m.Role
}
