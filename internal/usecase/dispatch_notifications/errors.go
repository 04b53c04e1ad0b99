package dispatch_notifications

import "errors"

var (
	// ErrInternal возвращается, когда не удалось получить задачи к отправке
	ErrInternal = errors.New("dispatch_notifications: internal error")
)
