package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type userRepository struct {
	db DBTX
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("create user: user is nil")
	}
	if user.Name == "" {
		return fmt.Errorf("create user: name is required")
	}

	// CreatedAt is assigned here, overwriting any caller-supplied value.
	user.CreatedAt = nowUTC()
	user.Active = true

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO users(name, photo_path, is_active, created_date)
		VALUES(?, ?, 1, ?)
	`, user.Name, nullString(user.PhotoPath), fmtTime(user.CreatedAt))
	if err != nil {
		return writeErr("create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return writeErr("create user: last insert id", err)
	}
	user.ID = id
	return nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx, id, true)
}

func (r *userRepository) GetAny(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx, id, false)
}

func (r *userRepository) get(ctx context.Context, id int64, activeOnly bool) (*User, error) {
	query := `
		SELECT id, name, photo_path, is_active, created_date
		FROM users
		WHERE id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}

	row := r.db.QueryRowContext(ctx, query, id)
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, readErr("get user", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]User, error) {
	query := `
		SELECT id, name, photo_path, is_active, created_date
		FROM users`
	if !filter.IncludeInactive {
		query += `
		WHERE is_active = 1`
	}
	query += `
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, readErr("list users", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, readErr("list users", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("list users", err)
	}
	return users, nil
}

// Update is a full-row overwrite keyed by id, except created_date which is
// immutable. Zero affected rows is still a success; callers confirm existence
// with Get when they need to.
func (r *userRepository) Update(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("update user: user is nil")
	}
	if user.ID == 0 {
		return fmt.Errorf("update user: id is required")
	}
	if user.Name == "" {
		return fmt.Errorf("update user: name is required")
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, photo_path = ?, is_active = ?
		WHERE id = ?
	`, user.Name, nullString(user.PhotoPath), boolToInt(user.Active), user.ID)
	if err != nil {
		return writeErr("update user", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET is_active = 0
		WHERE id = ? AND is_active = 1
	`, id)
	if err != nil {
		return 0, writeErr("delete user", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, writeErr("delete user: rows affected", err)
	}
	return count, nil
}

func scanUser(scan func(dest ...any) error) (*User, error) {
	var (
		user      User
		photoPath sql.NullString
		isActive  int
		createdAt string
	)
	if err := scan(&user.ID, &user.Name, &photoPath, &isActive, &createdAt); err != nil {
		return nil, err
	}

	var err error
	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	user.PhotoPath = fromNullString(photoPath)
	user.Active = isActive != 0
	return &user, nil
}
