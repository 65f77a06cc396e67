// internal/infra/database/sqlite_user_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Latsika/AirportApp/internal/domain/user"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrNicknameTaken = fmt.Errorf("user with this nickname already exists")

type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = `id, fullname, nickname, role, approved, approved_by, approved_at_utc, created_at_utc`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	var (
		u          user.User
		approved   int
		approvedAt sql.NullString
		createdAt  string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Nickname, &u.Role, &approved, &u.ApprovedBy, &approvedAt, &createdAt); err != nil {
		return nil, err
	}
	u.Approved = approved != 0

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		t, err := parseTime(approvedAt.String)
		if err != nil {
			return nil, err
		}
		u.ApprovedAt = sql.NullTime{Time: t, Valid: true}
	}
	return &u, nil
}

func (r *SQLiteUserRepository) Create(ctx context.Context, u *user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	approved := 0
	if u.Approved {
		approved = 1
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (fullname, nickname, role, approved, created_at_utc)
		 VALUES (?, ?, ?, ?, ?)`,
		u.FullName, u.Nickname, u.Role, approved, formatTime(u.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrNicknameTaken
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading created user id: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) GetByNickname(ctx context.Context, nickname string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE nickname = ?`, nickname)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting user by nickname: %w", err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) Approve(ctx context.Context, id int64, approverID int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET approved = 1, approved_by = ?, approved_at_utc = ? WHERE id = ?`,
		approverID, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("error approving user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading approve result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user row and writes the tombstone in one
// transaction so USER_DELETED detection cannot miss the account.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id int64, at time.Time) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for user delete: %w", err)
	}
	defer txn.Rollback()

	var fullname, nickname string
	err = txn.QueryRowContext(ctx, `SELECT fullname, nickname FROM users WHERE id = ?`, id).
		Scan(&fullname, &nickname)
	if err == sql.ErrNoRows {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("error loading user for delete: %w", err)
	}

	if _, err = txn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	_, err = txn.ExecContext(ctx,
		`INSERT INTO user_tombstones (user_id, fullname, nickname, deleted_at_utc)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		id, fullname, nickname, formatTime(at))
	if err != nil {
		return fmt.Errorf("error writing user tombstone: %w", err)
	}

	return txn.Commit()
}

func (r *SQLiteUserRepository) ListPendingApproval(ctx context.Context) ([]*user.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE approved = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing pending users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *SQLiteUserRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY approved ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *SQLiteUserRepository) ListTombstones(ctx context.Context) ([]*user.Tombstone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, fullname, nickname, deleted_at_utc FROM user_tombstones ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing user tombstones: %w", err)
	}
	defer rows.Close()

	tombstones := make([]*user.Tombstone, 0)
	for rows.Next() {
		var (
			t         user.Tombstone
			deletedAt string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.FullName, &t.Nickname, &deletedAt); err != nil {
			return nil, fmt.Errorf("error scanning tombstone row: %w", err)
		}
		if t.DeletedAt, err = parseTime(deletedAt); err != nil {
			return nil, err
		}
		tombstones = append(tombstones, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tombstone rows: %w", err)
	}
	return tombstones, nil
}

func collectUsers(rows *sql.Rows) ([]*user.User, error) {
	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
