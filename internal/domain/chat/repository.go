package chat

import "context"

// Repository describes chat persistence needs from use cases.
type Repository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoomBySquad(ctx context.Context, squadID string) (Room, bool, error)
	CreateMessage(ctx context.Context, message Message) error
	ListMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
}
