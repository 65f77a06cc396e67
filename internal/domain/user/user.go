// internal/domain/user/user.go
package user

import (
	"database/sql"
	"time"
)

// Role is the account role as stored in the users table.
type Role string

const (
	RoleUser   Role = "User"
	RoleAdmin  Role = "Admin"
	RoleDeputy Role = "Deputy"
)

// User represents an account in the system. New accounts start
// unapproved and cannot sign in until an approver confirms them.
type User struct {
	ID         int64
	FullName   string
	Nickname   string
	Role       Role
	Approved   bool
	ApprovedBy sql.NullInt64
	ApprovedAt sql.NullTime
	CreatedAt  time.Time
}

// Tombstone is the audit record written when an account is deleted.
// Deletion detection works off tombstones, never off row absence:
// absence cannot distinguish "deleted" from "never existed" after a
// backup restore.
type Tombstone struct {
	ID        int64
	UserID    int64
	FullName  string
	Nickname  string
	DeletedAt time.Time
}
