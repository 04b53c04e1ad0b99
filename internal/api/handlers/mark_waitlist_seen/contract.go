package mark_waitlist_seen

import "context"

type WaitlistService interface {
	MarkSeen(ctx context.Context, entryID, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
