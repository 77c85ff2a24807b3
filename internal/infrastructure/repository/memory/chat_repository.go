package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/squadscore/squadscore/internal/domain/chat"
)

type ChatRepository struct {
	mu       sync.RWMutex
	rooms    map[string]chat.Room
	messages map[string][]chat.Message
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{
		rooms:    make(map[string]chat.Room),
		messages: make(map[string][]chat.Message),
	}
}

func (r *ChatRepository) CreateRoom(_ context.Context, room chat.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.SquadID]; ok {
		return errDuplicate("chat_rooms_squad_id_key")
	}
	r.rooms[room.SquadID] = room
	return nil
}

func (r *ChatRepository) GetRoomBySquad(_ context.Context, squadID string) (chat.Room, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[squadID]
	if !ok {
		return chat.Room{}, false, nil
	}
	return room, true, nil
}

// deleteBySquad removes the squad's room and the room's messages.
func (r *ChatRepository) deleteBySquad(squadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[squadID]
	if !ok {
		return
	}
	delete(r.rooms, squadID)
	delete(r.messages, room.ID)
}

func (r *ChatRepository) CreateMessage(_ context.Context, message chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomExists := false
	for _, room := range r.rooms {
		if room.ID == message.RoomID {
			roomExists = true
			break
		}
	}
	if !roomExists {
		return fmt.Errorf("chat room %s not found", message.RoomID)
	}

	r.messages[message.RoomID] = append(r.messages[message.RoomID], message)
	return nil
}

// ListMessages returns the most recent limit messages in ascending
// creation order.
func (r *ChatRepository) ListMessages(_ context.Context, roomID string, limit int) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := r.messages[roomID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return append([]chat.Message(nil), messages...), nil
}
