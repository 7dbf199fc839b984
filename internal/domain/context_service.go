package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/tutor_context/internal/error_notificator"
	"github.com/Vovarama1992/tutor_context/internal/ports"
	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

// ErrInvalidInput — ошибка клиента, отдаётся как 400.
var ErrInvalidInput = errors.New("invalid input")

type contextService struct {
	contexts ports.ContextRepo
	history  ports.HistoryRepo
	notifier error_notificator.Notificator
	log      *logger.ZapLogger
}

func NewContextService(
	contexts ports.ContextRepo,
	history ports.HistoryRepo,
	n error_notificator.Notificator,
	log *logger.ZapLogger,
) ports.ContextService {
	return &contextService{
		contexts: contexts,
		history:  history,
		notifier: n,
		log:      log,
	}
}

// GetContext отдаёт контекст пользователя, при первом обращении создаёт пустой.
func (s *contextService) GetContext(ctx context.Context, userID string) (*ports.ContextView, error) {
	if err := s.contexts.EnsureExists(ctx, userID); err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка создания контекста")
		return nil, err
	}

	uc, err := s.contexts.Get(ctx, userID)
	if err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка чтения контекста")
		return nil, err
	}

	view := ports.EmptyContext(userID)
	if uc != nil {
		doc, ok := prefs.DecodeStored(uc.Preferences)
		if !ok {
			s.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "malformed stored preferences for " + userID + ", using empty document",
			})
		}
		view.Preferences = doc
	}

	history, err := s.history.ListRecent(ctx, userID, ports.DefaultHistoryLimit)
	if err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка чтения истории")
		return nil, err
	}
	view.History = history
	return view, nil
}

// UpdateContext заменяет документ целиком, без слияния.
func (s *contextService) UpdateContext(ctx context.Context, userID string, doc prefs.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	raw, err := prefs.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err := s.contexts.Upsert(ctx, userID, raw, prefs.CurrentVersion); err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка записи контекста")
		return err
	}
	return nil
}

func (s *contextService) AppendChat(ctx context.Context, userID, question, answer string) error {
	if _, err := s.history.Append(ctx, userID, question, answer); err != nil {
		s.notifier.Notify(ctx, userID, err, "Ошибка записи истории")
		return err
	}
	return nil
}
