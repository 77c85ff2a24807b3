package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/squadscore/squadscore/internal/domain/chat"
	"github.com/squadscore/squadscore/internal/domain/squad"
	"github.com/squadscore/squadscore/internal/domain/user"
	idgen "github.com/squadscore/squadscore/internal/platform/id"
	"github.com/squadscore/squadscore/internal/platform/realtime"
)

const defaultMessageLimit = 100

type ChatMessageDetail struct {
	ID         string
	RoomID     string
	SenderID   string
	SenderName string
	Body       string
	CreatedAt  time.Time
}

// ChatService owns squad chat: one room per squad, created on first
// use, with realtime message fanout.
type ChatService struct {
	chats  chat.Repository
	squads squad.Repository
	users  user.Repository
	idGen  idgen.Generator
	broker *realtime.Broker
	now    func() time.Time
}

func NewChatService(
	chats chat.Repository,
	squads squad.Repository,
	users user.Repository,
	idGen idgen.Generator,
	broker *realtime.Broker,
) *ChatService {
	return &ChatService{
		chats:  chats,
		squads: squads,
		users:  users,
		idGen:  idGen,
		broker: broker,
		now:    time.Now,
	}
}

func (s *ChatService) SendMessage(ctx context.Context, squadID, userID, body string) (ChatMessageDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "ChatService.SendMessage")
	defer span.End()

	squadID = strings.TrimSpace(squadID)
	userID = strings.TrimSpace(userID)
	body = strings.TrimSpace(body)
	if squadID == "" || userID == "" {
		return ChatMessageDetail{}, fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}
	if body == "" {
		return ChatMessageDetail{}, fmt.Errorf("%w: message body is required", ErrInvalidInput)
	}

	room, err := s.roomForMember(ctx, squadID, userID)
	if err != nil {
		return ChatMessageDetail{}, err
	}

	messageID, err := s.idGen.NewID()
	if err != nil {
		return ChatMessageDetail{}, fmt.Errorf("generate message id: %w", err)
	}

	message := chat.Message{
		ID:        messageID,
		RoomID:    room.ID,
		SenderID:  userID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := message.Validate(); err != nil {
		return ChatMessageDetail{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.chats.CreateMessage(ctx, message); err != nil {
		return ChatMessageDetail{}, fmt.Errorf("create chat message: %w", err)
	}

	detail := ChatMessageDetail{
		ID:        message.ID,
		RoomID:    message.RoomID,
		SenderID:  message.SenderID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
	if sender, ok, err := s.users.GetByID(ctx, userID); err == nil && ok {
		detail.SenderName = sender.Handle()
	}

	if s.broker != nil {
		s.broker.Publish(ctx, realtime.Event{
			Topic: realtime.ChatTopic(squadID),
			Kind:  "chat.message",
			Payload: map[string]any{
				"id":          detail.ID,
				"sender_id":   detail.SenderID,
				"sender_name": detail.SenderName,
				"body":        detail.Body,
				"created_at":  detail.CreatedAt,
			},
		})
	}

	return detail, nil
}

// ListMessages returns up to limit messages in ascending creation
// order, enriched with sender handles. Limit defaults to 100.
func (s *ChatService) ListMessages(ctx context.Context, squadID, userID string, limit int) ([]ChatMessageDetail, error) {
	squadID = strings.TrimSpace(squadID)
	userID = strings.TrimSpace(userID)
	if squadID == "" || userID == "" {
		return nil, fmt.Errorf("%w: squad id and user id are required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	room, err := s.roomForMember(ctx, squadID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chats.ListMessages(ctx, room.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	senderIDs := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if _, ok := seen[m.SenderID]; ok {
			continue
		}
		seen[m.SenderID] = struct{}{}
		senderIDs = append(senderIDs, m.SenderID)
	}
	profiles, err := s.users.ListByIDs(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("list sender profiles: %w", err)
	}
	handleByID := make(map[string]string, len(profiles))
	for _, p := range profiles {
		handleByID[p.ID] = p.Handle()
	}

	out := make([]ChatMessageDetail, 0, len(messages))
	for _, m := range messages {
		out = append(out, ChatMessageDetail{
			ID:         m.ID,
			RoomID:     m.RoomID,
			SenderID:   m.SenderID,
			SenderName: handleByID[m.SenderID],
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		})
	}

	return out, nil
}

// roomForMember gates on squad membership, then returns the squad's
// room, creating it on first use.
func (s *ChatService) roomForMember(ctx context.Context, squadID, userID string) (chat.Room, error) {
	if _, ok, err := s.squads.GetMember(ctx, squadID, userID); err != nil {
		return chat.Room{}, fmt.Errorf("get squad membership: %w", err)
	} else if !ok {
		if _, exists, err := s.squads.GetByID(ctx, squadID); err != nil {
			return chat.Room{}, fmt.Errorf("get squad: %w", err)
		} else if !exists {
			return chat.Room{}, fmt.Errorf("%w: squad %s", ErrNotFound, squadID)
		}
		return chat.Room{}, fmt.Errorf("%w: user %s is not a member of squad %s", ErrForbidden, userID, squadID)
	}

	room, exists, err := s.chats.GetRoomBySquad(ctx, squadID)
	if err != nil {
		return chat.Room{}, fmt.Errorf("get chat room: %w", err)
	}
	if exists {
		return room, nil
	}

	roomID, err := s.idGen.NewID()
	if err != nil {
		return chat.Room{}, fmt.Errorf("generate room id: %w", err)
	}
	room = chat.Room{ID: roomID, SquadID: squadID, CreatedAt: s.now().UTC()}
	if err := s.chats.CreateRoom(ctx, room); err != nil {
		if isDuplicateConstraintError(err) {
			// Lost a creation race; use the winner's room.
			room, exists, err = s.chats.GetRoomBySquad(ctx, squadID)
			if err != nil {
				return chat.Room{}, fmt.Errorf("get chat room after race: %w", err)
			}
			if exists {
				return room, nil
			}
		}
		return chat.Room{}, fmt.Errorf("create chat room: %w", err)
	}

	return room, nil
}
