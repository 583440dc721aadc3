package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

// ProfileService is the caller-facing surface for user and preference
// persistence. It enforces the schema's field limits and logs write failures
// before propagating them; it never retries.
type ProfileService struct {
	store *storage.Store
	log   *slog.Logger
}

func NewProfileService(store *storage.Store, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{store: store, log: logger}
}

func (s *ProfileService) CreateUser(ctx context.Context, req CreateUserRequest) (*storage.User, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("create user: store is nil")
	}
	if err := validateUserName(req.Name); err != nil {
		return nil, err
	}
	if err := validatePhotoPath(req.PhotoPath); err != nil {
		return nil, err
	}

	user := &storage.User{Name: req.Name, PhotoPath: req.PhotoPath}
	if err := s.store.Users.Create(ctx, user); err != nil {
		s.log.Error("create user failed", "name", req.Name, "error", err)
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	if err := validateUserID(id); err != nil {
		return nil, err
	}
	return s.store.Users.Get(ctx, id)
}

func (s *ProfileService) ListUsers(ctx context.Context, includeInactive bool) ([]storage.User, error) {
	return s.store.Users.List(ctx, storage.UserFilter{IncludeInactive: includeInactive})
}

func (s *ProfileService) UpdateUser(ctx context.Context, req UpdateUserRequest) error {
	if err := validateUserID(req.ID); err != nil {
		return err
	}
	if err := validateUserName(req.Name); err != nil {
		return err
	}
	if err := validatePhotoPath(req.PhotoPath); err != nil {
		return err
	}

	user := &storage.User{
		ID:        req.ID,
		Name:      req.Name,
		PhotoPath: req.PhotoPath,
		Active:    req.Active,
	}
	if err := s.store.Users.Update(ctx, user); err != nil {
		s.log.Error("update user failed", "user_id", req.ID, "error", err)
		return err
	}
	return nil
}

// DeleteUser marks the user inactive. The returned count is 0 when no active
// user matched, which is not an error.
func (s *ProfileService) DeleteUser(ctx context.Context, id int64) (int64, error) {
	if err := validateUserID(id); err != nil {
		return 0, err
	}
	count, err := s.store.Users.Delete(ctx, id)
	if err != nil {
		s.log.Error("delete user failed", "user_id", id, "error", err)
		return 0, err
	}
	return count, nil
}

func (s *ProfileService) ListPreferences(ctx context.Context, userID int64) ([]storage.Preference, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.store.Preferences.List(ctx, userID)
}

func (s *ProfileService) GetPreference(ctx context.Context, userID int64, key string) (*storage.Preference, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.store.Preferences.Get(ctx, userID, key)
}

func (s *ProfileService) SetPreference(ctx context.Context, req SetPreferenceRequest) (*storage.Preference, error) {
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}
	if err := validatePreference(req.Key, req.Value, req.DataType); err != nil {
		return nil, err
	}

	pref := &storage.Preference{
		UserID:   req.UserID,
		Key:      req.Key,
		Value:    req.Value,
		DataType: req.DataType,
	}
	if err := s.store.Preferences.Set(ctx, pref); err != nil {
		s.log.Error("set preference failed", "user_id", req.UserID, "key", req.Key, "error", err)
		return nil, err
	}
	return pref, nil
}
