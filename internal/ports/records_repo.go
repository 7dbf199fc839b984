package ports

import (
	"context"
	"time"
)

// DTO для истории
type ChatEntry struct {
	ID        int64     `json:"-"`
	UserID    string    `json:"-"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryStats struct {
	TotalConversations int
	UniqueUsers        int
	LatestUserID       string
	LatestAt           *time.Time
	MostActiveUserID   string
	MostActiveCount    int
}

type HistoryRepo interface {
	Append(ctx context.Context, userID, question, answer string) (int64, error)
	// ListRecent — новые сверху, не больше limit
	ListRecent(ctx context.Context, userID string, limit int) ([]ChatEntry, error)
	ListAll(ctx context.Context, limit int) ([]ChatEntry, error)
	Stats(ctx context.Context) (*HistoryStats, error)
}
