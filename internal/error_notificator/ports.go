package error_notificator

import "context"

type Notificator interface {
	// Notify — сообщает об ошибке, связанной с пользователем userID
	Notify(ctx context.Context, userID string, err error, details string) error
}
