// internal/domain/user/repository.go
package user

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving
// user accounts and their deletion tombstones.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByNickname(ctx context.Context, nickname string) (*User, error)
	Approve(ctx context.Context, id int64, approverID int64, at time.Time) error

	// Delete removes the account row and writes its tombstone in a
	// single transaction.
	Delete(ctx context.Context, id int64, at time.Time) error

	ListPendingApproval(ctx context.Context) ([]*User, error)
	ListAll(ctx context.Context) ([]*User, error)
	ListTombstones(ctx context.Context) ([]*Tombstone, error)
}
