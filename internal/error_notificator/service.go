package error_notificator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultWindow — сколько молчим о повторе той же ошибки того же юзера.
const DefaultWindow = time.Minute

const maxTracked = 1024

// Service гасит повторы: одинаковые (userID, details) в пределах окна
// не уходят в infra, а считаются и дописываются к следующему уведомлению.
type Service struct {
	infra  Notificator
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]*seenEntry
}

type seenEntry struct {
	sentAt     time.Time
	suppressed int
}

func NewService(infra Notificator) *Service {
	return NewServiceWithWindow(infra, DefaultWindow)
}

func NewServiceWithWindow(infra Notificator, window time.Duration) *Service {
	return &Service{
		infra:  infra,
		window: window,
		now:    time.Now,
		seen:   make(map[string]*seenEntry),
	}
}

func (s *Service) Notify(ctx context.Context, userID string, err error, details string) error {
	key := userID + "\x00" + details
	now := s.now()

	s.mu.Lock()
	e, ok := s.seen[key]
	if ok && now.Sub(e.sentAt) < s.window {
		e.suppressed++
		s.mu.Unlock()
		return nil
	}

	repeated := 0
	if ok {
		repeated = e.suppressed
	}
	s.seen[key] = &seenEntry{sentAt: now}
	if len(s.seen) > maxTracked {
		s.prune(now)
	}
	s.mu.Unlock()

	if repeated > 0 {
		details = fmt.Sprintf("%s (ещё %d раз за последние %s)", details, repeated, s.window)
	}
	return s.infra.Notify(ctx, userID, err, details)
}

// prune выкидывает записи старше окна. Вызывается под mu.
func (s *Service) prune(now time.Time) {
	for k, e := range s.seen {
		if now.Sub(e.sentAt) >= s.window {
			delete(s.seen, k)
		}
	}
}
