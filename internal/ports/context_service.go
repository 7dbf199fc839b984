package ports

import (
	"context"

	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

// Дефолт истории в ответах
const DefaultHistoryLimit = 10

// ContextView — то, что отдаёт GET /context/{user_id}
type ContextView struct {
	UserID      string         `json:"user_id"`
	Preferences prefs.Document `json:"preferences"`
	History     []ChatEntry    `json:"history"`
}

// EmptyContext — подставляется, когда контекст достать не удалось.
func EmptyContext(userID string) *ContextView {
	return &ContextView{
		UserID:  userID,
		History: []ChatEntry{},
	}
}

type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ContextService interface {
	GetContext(ctx context.Context, userID string) (*ContextView, error)
	UpdateContext(ctx context.Context, userID string, doc prefs.Document) error
	AppendChat(ctx context.Context, userID, question, answer string) error
}

// ContextClient ходит в context store по HTTP и никогда не падает.
type ContextClient interface {
	FetchContext(ctx context.Context, userID string) *ContextView
}
