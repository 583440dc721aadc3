package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a normal empty read, not an I/O failure.
	ErrNotFound     = errors.New("storage: not found")
	ErrInit         = errors.New("storage: initialize failed")
	ErrRead         = errors.New("storage: read failed")
	ErrWrite        = errors.New("storage: write failed")
	ErrSchemaTooNew = errors.New("storage: schema version newer than code")
)

// User is one local profile. Deleting a user only clears Active; the row is
// retained so preference history and restores keep working.
type User struct {
	ID        int64
	Name      string
	PhotoPath string
	Active    bool
	CreatedAt time.Time
}

// Preference is a single named setting scoped to a user. Values are stored as
// strings; DataType is a hint ("string", "int", "bool", ...) for caller-side
// coercion.
type Preference struct {
	ID        int64
	UserID    int64
	Key       string
	Value     string
	DataType  string
	UpdatedAt time.Time
}

// NavigationState is the sidebar state singleton, one row per user.
type NavigationState struct {
	UserID     int64
	Expanded   bool
	LastModule string
	UpdatedAt  time.Time
}

// ThemeState is the theme singleton, one row per user.
type ThemeState struct {
	UserID         int64
	ThemeName      string
	CustomSettings string
	UpdatedAt      time.Time
}

const (
	ThemeLight  = "Light"
	ThemeDark   = "Dark"
	ThemeSystem = "System"
)

// ValidThemeName reports whether name is one of the supported theme names.
func ValidThemeName(name string) bool {
	switch name {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

type UserFilter struct {
	IncludeInactive bool
}

type UserRepository interface {
	// Create assigns CreatedAt server-side, inserts, and fills user.ID with
	// the generated id.
	Create(ctx context.Context, user *User) error
	// Get returns the user only if it exists and is active.
	Get(ctx context.Context, id int64) (*User, error)
	// GetAny returns the user regardless of its active flag.
	GetAny(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
	// Update overwrites name, photo path and the active flag by id. A zero-row
	// no-op is not distinguished from an actual write; CreatedAt is immutable.
	Update(ctx context.Context, user *User) error
	// Delete marks the user inactive and returns the number of affected rows
	// (0 when the user does not exist or is already inactive).
	Delete(ctx context.Context, id int64) (int64, error)
}

type PreferenceRepository interface {
	List(ctx context.Context, userID int64) ([]Preference, error)
	Get(ctx context.Context, userID int64, key string) (*Preference, error)
	// Set upserts by (userID, key) in a single statement. An existing row
	// keeps its id; pref.ID and pref.UpdatedAt are filled on return.
	Set(ctx context.Context, pref *Preference) error
}

type NavigationRepository interface {
	Get(ctx context.Context, userID int64) (*NavigationState, error)
	// Save upserts by userID; at most one row per user exists at all times.
	Save(ctx context.Context, state *NavigationState) error
}

type ThemeRepository interface {
	Get(ctx context.Context, userID int64) (*ThemeState, error)
	Save(ctx context.Context, state *ThemeState) error
}
