package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type navigationRepository struct {
	db DBTX
}

func (r *navigationRepository) Get(ctx context.Context, userID int64) (*NavigationState, error) {
	var (
		state      NavigationState
		isExpanded int
		lastModule sql.NullString
		updatedAt  string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, is_expanded, last_module, updated_date
		FROM navigation_state
		WHERE user_id = ?
	`, userID).Scan(&state.UserID, &isExpanded, &lastModule, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, readErr("get navigation state", err)
	}

	state.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, readErr("get navigation state", err)
	}
	state.Expanded = isExpanded != 0
	state.LastModule = fromNullString(lastModule)
	return &state, nil
}

func (r *navigationRepository) Save(ctx context.Context, state *NavigationState) error {
	if state == nil {
		return fmt.Errorf("save navigation state: state is nil")
	}
	if state.UserID == 0 {
		return fmt.Errorf("save navigation state: user id is required")
	}

	state.UpdatedAt = nowUTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO navigation_state(user_id, is_expanded, last_module, updated_date)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			is_expanded = excluded.is_expanded,
			last_module = excluded.last_module,
			updated_date = excluded.updated_date
	`, state.UserID, boolToInt(state.Expanded), nullString(state.LastModule), fmtTime(state.UpdatedAt))
	if err != nil {
		return writeErr("save navigation state", err)
	}
	return nil
}
