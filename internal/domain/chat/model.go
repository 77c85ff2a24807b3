package chat

import (
	"fmt"
	"time"
)

// Room is a squad's single chat room, created on first use.
type Room struct {
	ID        string
	SquadID   string
	CreatedAt time.Time
}

type Message struct {
	ID        string
	RoomID    string
	SenderID  string
	Body      string
	CreatedAt time.Time
}

func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message id is required")
	}
	if m.RoomID == "" {
		return fmt.Errorf("message room id is required")
	}
	if m.SenderID == "" {
		return fmt.Errorf("message sender is required")
	}
	if m.Body == "" {
		return fmt.Errorf("message body is required")
	}

	return nil
}
