package ports

import (
	"context"
	"time"
)

// Строка таблицы contexts
type UserContext struct {
	ID            int64
	UserID        string
	Preferences   []byte // JSON как лежит в базе
	SchemaVersion int
	UpdatedAt     time.Time
}

type ContextRepo interface {
	// EnsureExists создаёт пустой контекст, если его ещё нет. Атомарно.
	EnsureExists(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*UserContext, error)
	// Upsert заменяет документ целиком и ставит updated_at.
	Upsert(ctx context.Context, userID string, preferences []byte, schemaVersion int) error
}
