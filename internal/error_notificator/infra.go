package error_notificator

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
)

// Infra пишет уведомления в лог сервиса.
type Infra struct {
	log     *logger.ZapLogger
	service string
}

func NewInfra(log *logger.ZapLogger, service string) *Infra {
	return &Infra{log: log, service: service}
}

func (i *Infra) Notify(ctx context.Context, userID string, err error, details string) error {
	i.log.Log(logger.LogEntry{
		Level:   "error",
		Message: fmt.Sprintf("user=%s: %s", userID, details),
		Error:   err,
		Service: i.service,
	})
	return nil
}
