package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type themeRepository struct {
	db DBTX
}

func (r *themeRepository) Get(ctx context.Context, userID int64) (*ThemeState, error) {
	var (
		state          ThemeState
		customSettings sql.NullString
		updatedAt      string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, theme_name, custom_settings, updated_date
		FROM theme_state
		WHERE user_id = ?
	`, userID).Scan(&state.UserID, &state.ThemeName, &customSettings, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, readErr("get theme state", err)
	}

	state.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, readErr("get theme state", err)
	}
	state.CustomSettings = fromNullString(customSettings)
	return &state, nil
}

func (r *themeRepository) Save(ctx context.Context, state *ThemeState) error {
	if state == nil {
		return fmt.Errorf("save theme state: state is nil")
	}
	if state.UserID == 0 {
		return fmt.Errorf("save theme state: user id is required")
	}
	if !ValidThemeName(state.ThemeName) {
		return fmt.Errorf("save theme state: unknown theme %q", state.ThemeName)
	}

	state.UpdatedAt = nowUTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO theme_state(user_id, theme_name, custom_settings, updated_date)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			theme_name = excluded.theme_name,
			custom_settings = excluded.custom_settings,
			updated_date = excluded.updated_date
	`, state.UserID, state.ThemeName, nullString(state.CustomSettings), fmtTime(state.UpdatedAt))
	if err != nil {
		return writeErr("save theme state", err)
	}
	return nil
}
