// internal/domain/popup/repository.go
package popup

import (
	"context"
	"time"
)

// Repository is the durable popup queue. ListUnread is the read cursor
// an admin session drains on open; MarkRead advances it.
type Repository interface {
	Enqueue(ctx context.Context, n *Notification) error
	ListUnread(ctx context.Context) ([]*Notification, error)
	MarkRead(ctx context.Context, ids []int64, at time.Time) error
}
