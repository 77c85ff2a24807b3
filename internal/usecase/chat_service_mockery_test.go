package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/squadscore/squadscore/internal/domain/chat"
	"github.com/squadscore/squadscore/internal/domain/user"
	"github.com/squadscore/squadscore/internal/infrastructure/repository/memory"
	chatmock "github.com/squadscore/squadscore/internal/mocks/domain/chat"
	usermock "github.com/squadscore/squadscore/internal/mocks/domain/user"
)

func TestChatService_ListMessages_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	chatRepo := chatmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)

	f := newFixture(t)
	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	service := NewChatService(chatRepo, f.squads, userRepo, &seqIDGenerator{prefix: "msg"}, nil)

	room := chat.Room{ID: "room-001", SquadID: created.ID, CreatedAt: time.Now().UTC()}
	messages := []chat.Message{
		{ID: "m1", RoomID: room.ID, SenderID: memory.UserIDAri, Body: "gg", CreatedAt: time.Now().UTC()},
		{ID: "m2", RoomID: room.ID, SenderID: memory.UserIDAri, Body: "rematch?", CreatedAt: time.Now().UTC()},
	}

	chatRepo.
		On("GetRoomBySquad", mock.MatchedBy(func(context.Context) bool { return true }), created.ID).
		Return(room, true, nil).
		Once()
	chatRepo.
		On("ListMessages", mock.MatchedBy(func(context.Context) bool { return true }), room.ID, 100).
		Return(messages, nil).
		Once()
	userRepo.
		On("ListByIDs", mock.MatchedBy(func(context.Context) bool { return true }), []string{memory.UserIDAri}).
		Return([]user.User{{ID: memory.UserIDAri, Username: "ari"}}, nil).
		Once()

	got, err := service.ListMessages(ctx, created.ID, memory.UserIDAri, 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(got) != len(messages) {
		t.Fatalf("unexpected message count: got=%d want=%d", len(got), len(messages))
	}
	if got[0].SenderName != "ari" {
		t.Fatalf("unexpected sender name: got=%s want=ari", got[0].SenderName)
	}
}

func TestChatService_ListMessages_RepoErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	chatRepo := chatmock.NewRepository(t)
	userRepo := usermock.NewRepository(t)

	f := newFixture(t)
	created := f.createSquad(t, memory.UserIDAri, "Night Raiders")

	service := NewChatService(chatRepo, f.squads, userRepo, &seqIDGenerator{prefix: "msg"}, nil)

	storeErr := errors.New("connection reset")
	chatRepo.
		On("GetRoomBySquad", mock.MatchedBy(func(context.Context) bool { return true }), created.ID).
		Return(chat.Room{}, false, storeErr).
		Once()

	if _, err := service.ListMessages(ctx, created.ID, memory.UserIDAri, 0); !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
