package secondary

import "context"

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a message surfaced to the user, e.g. after a rolled back write.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

// Notifier delivers user-visible notices to whatever front end is attached.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}
