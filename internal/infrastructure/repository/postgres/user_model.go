package postgres

import (
	"database/sql"
	"time"

	"github.com/squadscore/squadscore/internal/domain/user"
)

type userTableModel struct {
	ID          string         `db:"id"`
	Email       string         `db:"email"`
	Username    sql.NullString `db:"username"`
	DisplayName sql.NullString `db:"display_name"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:          m.ID,
		Email:       m.Email,
		Username:    m.Username.String,
		DisplayName: m.DisplayName.String,
		CreatedAt:   m.CreatedAt,
	}
}
