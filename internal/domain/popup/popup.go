// internal/domain/popup/popup.go
package popup

import (
	"database/sql"
	"time"
)

// Notification is one item in the durable "unread notifications" list
// shown to the admin on next app open. The popup channel cannot fail
// permanently: enqueueing is a local durable write.
type Notification struct {
	ID         int64
	SnapshotID int64
	Title      string
	Message    string
	CreatedAt  time.Time
	ReadAt     sql.NullTime
}

// Unread reports whether the notification has not been acknowledged yet.
func (n *Notification) Unread() bool {
	return !n.ReadAt.Valid
}
