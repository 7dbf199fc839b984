package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/tutor_context/internal/error_notificator"
	"github.com/Vovarama1992/tutor_context/internal/ports"
)

type chatService struct {
	contexts ports.ContextClient
	history  ports.HistoryRepo
	llm      ports.Completer
	notifier error_notificator.Notificator
	log      *logger.ZapLogger
}

func NewChatService(
	contexts ports.ContextClient,
	history ports.HistoryRepo,
	llm ports.Completer,
	n error_notificator.Notificator,
	log *logger.ZapLogger,
) ports.ChatService {
	return &chatService{
		contexts: contexts,
		history:  history,
		llm:      llm,
		notifier: n,
		log:      log,
	}
}

// Ask: контекст -> промпт -> LLM -> запись в историю.
func (s *chatService) Ask(ctx context.Context, userID, question string) (string, error) {
	start := time.Now()

	// 1) контекст, не падает
	view := s.contexts.FetchContext(ctx, userID)

	// 2) последние пары из своей таблицы
	recent, err := s.history.ListRecent(ctx, userID, promptHistoryLimit)
	if err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка чтения истории")
		return "", err
	}

	// 3) LLM
	answer, err := s.llm.Complete(ctx, question, BuildSystemPrompt(view.Preferences, recent))
	if err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка LLM")
		return "", err
	}

	// 4) история
	if _, err := s.history.Append(ctx, userID, question, answer); err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка записи истории")
		return "", err
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("answered user=%s mode=%s in %.1fs", userID, s.llm.Mode(), time.Since(start).Seconds()),
	})
	return answer, nil
}

func (s *chatService) History(ctx context.Context, userID string, limit int) ([]ports.ChatEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	if limit > ports.MaxHistoryLimit {
		limit = ports.MaxHistoryLimit
	}
	return s.history.ListRecent(ctx, userID, limit)
}

// ContextView — контекст из context store плюс своя история.
func (s *chatService) ContextView(ctx context.Context, userID string) (*ports.ContextView, error) {
	view := s.contexts.FetchContext(ctx, userID)

	history, err := s.history.ListRecent(ctx, userID, ports.DefaultHistoryLimit)
	if err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка чтения истории")
		return nil, err
	}

	return &ports.ContextView{
		UserID:      userID,
		Preferences: view.Preferences,
		History:     history,
	}, nil
}
