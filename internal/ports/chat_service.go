package ports

import "context"

const MaxHistoryLimit = 100

type ChatService interface {
	Ask(ctx context.Context, userID, question string) (string, error)
	History(ctx context.Context, userID string, limit int) ([]ChatEntry, error)
	ContextView(ctx context.Context, userID string) (*ContextView, error)
}

// Completer — шлюз к LLM.
type Completer interface {
	Complete(ctx context.Context, question, systemPrompt string) (string, error)
	Mode() string
}
