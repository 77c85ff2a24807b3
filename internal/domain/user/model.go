package user

import (
	"strings"
	"time"
)

// User is an authenticated account known to the service.
type User struct {
	ID          string
	Email       string
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID      string
	Email       string
	Username    string
	DisplayName string
}

// Handle is the name shown next to a user's messages and leaderboard
// entries. Falls back to the email local part when no username is set.
func (u User) Handle() string {
	if u.Username != "" {
		return u.Username
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
