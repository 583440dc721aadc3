package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "odin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTestUser(t *testing.T, store *Store, name string) *User {
	t.Helper()

	user := &User{Name: name}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "odin.db")
	store, err := Open(path)
	require.NoError(t, err)
	user := createTestUser(t, store, "Ada")
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	loaded, err := store.Users.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", loaded.Name)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Open("")
	require.ErrorIs(t, err, ErrInit)
}

func TestOpenRefusesNewerSchemaVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "odin.db")
	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.DB().Exec(`UPDATE app_meta SET value = ? WHERE key = 'schema_version'`, CurrentSchemaVersion()+1)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(path)
	require.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestUserCreateGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	// Caller-supplied CreatedAt must be overwritten server-side.
	user := &User{Name: "Ada", PhotoPath: "/photos/ada.png", CreatedAt: time.Unix(0, 0)}
	require.NoError(t, store.Users.Create(ctx, user))
	require.NotZero(t, user.ID)
	require.True(t, user.Active)
	require.WithinDuration(t, time.Now().UTC(), user.CreatedAt, time.Minute)

	loaded, err := store.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, loaded.ID)
	require.Equal(t, user.Name, loaded.Name)
	require.Equal(t, user.PhotoPath, loaded.PhotoPath)
	require.True(t, loaded.Active)
	require.True(t, loaded.CreatedAt.Equal(user.CreatedAt))
}

func TestUserGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.Users.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserSoftDelete(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "Ada")
	other := createTestUser(t, store, "Grace")

	count, err := store.Users.Delete(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// Active reads no longer see the user.
	_, err = store.Users.Get(ctx, user.ID)
	require.ErrorIs(t, err, ErrNotFound)

	users, err := store.Users.List(ctx, UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, other.ID, users[0].ID)

	// The row itself is retained, only marked inactive.
	raw, err := store.Users.GetAny(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, raw.Active)
	require.Equal(t, "Ada", raw.Name)

	all, err := store.Users.List(ctx, UserFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Deleting again affects nothing and is not an error.
	count, err = store.Users.Delete(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	// The id is not reused.
	next := createTestUser(t, store, "Margaret")
	require.Greater(t, next.ID, user.ID)
}

func TestUserUpdateOverwritesButKeepsCreatedDate(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "Ada")
	created := user.CreatedAt

	user.Name = "Ada Lovelace"
	user.PhotoPath = "/photos/new.png"
	require.NoError(t, store.Users.Update(ctx, user))

	loaded, err := store.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", loaded.Name)
	require.Equal(t, "/photos/new.png", loaded.PhotoPath)
	require.True(t, loaded.CreatedAt.Equal(created))
}

func TestUserUpdateMissingIsNoOpSuccess(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	err := store.Users.Update(context.Background(), &User{ID: 99, Name: "Ghost"})
	require.NoError(t, err)
}

func TestUserListOrderIsInsertionOrder(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alice", "Bob"} {
		createTestUser(t, store, name)
	}

	users, err := store.Users.List(ctx, UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "Charlie", users[0].Name)
	require.Equal(t, "Alice", users[1].Name)
	require.Equal(t, "Bob", users[2].Name)
}

func TestPreferenceSetUpsertsSingleRow(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "Ada")

	first := &Preference{UserID: user.ID, Key: "vol", Value: "50", DataType: "int"}
	require.NoError(t, store.Preferences.Set(ctx, first))
	require.NotZero(t, first.ID)

	second := &Preference{UserID: user.ID, Key: "vol", Value: "75", DataType: "int"}
	require.NoError(t, store.Preferences.Set(ctx, second))

	// The existing row id survives the upsert.
	require.Equal(t, first.ID, second.ID)

	pref, err := store.Preferences.Get(ctx, user.ID, "vol")
	require.NoError(t, err)
	require.Equal(t, "75", pref.Value)

	prefs, err := store.Preferences.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
}

func TestPreferenceSetDefaultsDataType(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "Ada")

	pref := &Preference{UserID: user.ID, Key: "theme", Value: "dark"}
	require.NoError(t, store.Preferences.Set(ctx, pref))

	loaded, err := store.Preferences.Get(ctx, user.ID, "theme")
	require.NoError(t, err)
	require.Equal(t, "string", loaded.DataType)
}

func TestPreferenceGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user := createTestUser(t, store, "Ada")

	_, err := store.Preferences.Get(context.Background(), user.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	prefs, err := store.Preferences.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Empty(t, prefs)
}

func TestPreferenceConcurrentWritersConvergeToOneRow(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "Ada")

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Preferences.Set(ctx, &Preference{
				UserID: user.ID,
				Key:    "vol",
				Value:  fmt.Sprintf("%d", i),
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	prefs, err := store.Preferences.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
}

func TestPreferencesAreScopedPerUser(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	ada := createTestUser(t, store, "Ada")
	grace := createTestUser(t, store, "Grace")

	require.NoError(t, store.Preferences.Set(ctx, &Preference{UserID: ada.ID, Key: "theme", Value: "dark"}))
	require.NoError(t, store.Preferences.Set(ctx, &Preference{UserID: grace.ID, Key: "theme", Value: "light"}))

	pref, err := store.Preferences.Get(ctx, ada.ID, "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", pref.Value)

	pref, err = store.Preferences.Get(ctx, grace.ID, "theme")
	require.NoError(t, err)
	require.Equal(t, "light", pref.Value)
}

func TestNavigationSaveUpsertsSingleRow(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "Ada")

	require.NoError(t, store.Navigation.Save(ctx, &NavigationState{UserID: user.ID, Expanded: true, LastModule: "calendar"}))
	require.NoError(t, store.Navigation.Save(ctx, &NavigationState{UserID: user.ID, Expanded: false, LastModule: "tasks"}))

	state, err := store.Navigation.Get(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, state.Expanded)
	require.Equal(t, "tasks", state.LastModule)

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM navigation_state WHERE user_id = ?`, user.ID).Scan(&count))
	require.Equal(t, 1, count)
}

func TestNavigationGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.Navigation.Get(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestThemeSaveUpsertsAndValidatesName(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "Ada")

	require.NoError(t, store.Themes.Save(ctx, &ThemeState{UserID: user.ID, ThemeName: ThemeLight}))
	require.NoError(t, store.Themes.Save(ctx, &ThemeState{UserID: user.ID, ThemeName: ThemeDark, CustomSettings: `{"accent":"blue"}`}))

	state, err := store.Themes.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, ThemeDark, state.ThemeName)
	require.Equal(t, `{"accent":"blue"}`, state.CustomSettings)

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM theme_state WHERE user_id = ?`, user.ID).Scan(&count))
	require.Equal(t, 1, count)

	err = store.Themes.Save(ctx, &ThemeState{UserID: user.ID, ThemeName: "Neon"})
	require.Error(t, err)
}

func TestInTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(r Repos) error {
		user := &User{Name: "Ada"}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		if err := r.Preferences.Set(ctx, &Preference{UserID: user.ID, Key: "theme", Value: "dark"}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	users, err := store.Users.List(ctx, UserFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Empty(t, users)

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM user_preferences`).Scan(&count))
	require.Zero(t, count)
}

func TestInTxCommits(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	var id int64
	err := store.InTx(ctx, func(r Repos) error {
		user := &User{Name: "Ada"}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		id = user.ID
		return r.Preferences.Set(ctx, &Preference{UserID: user.ID, Key: "theme", Value: "dark"})
	})
	require.NoError(t, err)

	pref, err := store.Preferences.Get(ctx, id, "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", pref.Value)
}

func TestMigrationsRecordSchemaVersion(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	var raw string
	require.NoError(t, store.DB().QueryRow(`SELECT value FROM app_meta WHERE key = 'schema_version'`).Scan(&raw))
	require.Equal(t, fmt.Sprintf("%d", CurrentSchemaVersion()), raw)

	var applied int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	require.Equal(t, CurrentSchemaVersion(), applied)
}

func TestRunMigrationsIsAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "odin.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	migrations := []Migration{
		{
			Version:     1,
			Description: "create a",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`CREATE TABLE test_a (id INTEGER PRIMARY KEY)`)
				return err
			},
		},
		{
			Version:     2,
			Description: "create b then fail",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec(`CREATE TABLE test_b (id INTEGER PRIMARY KEY)`); err != nil {
					return err
				}
				return errors.New("boom")
			},
		},
	}

	err = RunMigrations(db, migrations)
	require.Error(t, err)

	version, err := readSchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, 1, version)

	require.True(t, tableExists(t, db, "test_a"))
	require.False(t, tableExists(t, db, "test_b"))
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}
