package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type preferenceRepository struct {
	db DBTX
}

func (r *preferenceRepository) List(ctx context.Context, userID int64) ([]Preference, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, key, value, data_type, updated_date
		FROM user_preferences
		WHERE user_id = ?
		ORDER BY key
	`, userID)
	if err != nil {
		return nil, readErr("list preferences", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		pref, err := scanPreference(rows.Scan)
		if err != nil {
			return nil, readErr("list preferences", err)
		}
		prefs = append(prefs, *pref)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("list preferences", err)
	}
	return prefs, nil
}

func (r *preferenceRepository) Get(ctx context.Context, userID int64, key string) (*Preference, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, key, value, data_type, updated_date
		FROM user_preferences
		WHERE user_id = ? AND key = ?
	`, userID, key)

	pref, err := scanPreference(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, readErr("get preference", err)
	}
	return pref, nil
}

// Set upserts in one statement so two concurrent writers to the same
// (user_id, key) can never produce two rows; the conflict clause keeps the
// existing row's id.
func (r *preferenceRepository) Set(ctx context.Context, pref *Preference) error {
	if pref == nil {
		return fmt.Errorf("set preference: preference is nil")
	}
	if pref.UserID == 0 {
		return fmt.Errorf("set preference: user id is required")
	}
	if pref.Key == "" {
		return fmt.Errorf("set preference: key is required")
	}
	if pref.DataType == "" {
		pref.DataType = "string"
	}

	pref.UpdatedAt = nowUTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_preferences(user_id, key, value, data_type, updated_date)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
			value = excluded.value,
			data_type = excluded.data_type,
			updated_date = excluded.updated_date
	`, pref.UserID, pref.Key, nullString(pref.Value), pref.DataType, fmtTime(pref.UpdatedAt))
	if err != nil {
		return writeErr("set preference", err)
	}

	if err := r.db.QueryRowContext(ctx, `
		SELECT id FROM user_preferences WHERE user_id = ? AND key = ?
	`, pref.UserID, pref.Key).Scan(&pref.ID); err != nil {
		return readErr("set preference: read id", err)
	}
	return nil
}

func scanPreference(scan func(dest ...any) error) (*Preference, error) {
	var (
		pref      Preference
		value     sql.NullString
		updatedAt string
	)
	if err := scan(&pref.ID, &pref.UserID, &pref.Key, &value, &pref.DataType, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	pref.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	pref.Value = fromNullString(value)
	return &pref, nil
}
