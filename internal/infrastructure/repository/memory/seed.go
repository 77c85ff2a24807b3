package memory

import (
	"time"

	"github.com/squadscore/squadscore/internal/domain/user"
)

// Dev-mode user IDs usable with the X-User-Id header.
const (
	UserIDAri  = "user-ari"
	UserIDBima = "user-bima"
	UserIDCika = "user-cika"
)

// SeedUsers returns the accounts available when the service runs
// without a database.
func SeedUsers() []user.User {
	createdAt := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	return []user.User{
		{
			ID:          UserIDAri,
			Email:       "ari@example.com",
			Username:    "ari",
			DisplayName: "Ari Wibowo",
			CreatedAt:   createdAt,
		},
		{
			ID:          UserIDBima,
			Email:       "bima@example.com",
			Username:    "bima",
			DisplayName: "Bima Putra",
			CreatedAt:   createdAt,
		},
		{
			ID:          UserIDCika,
			Email:       "cika@example.com",
			Username:    "",
			DisplayName: "Cika",
			CreatedAt:   createdAt,
		},
	}
}
