package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

// StateService persists the per-user navigation and theme singletons. The
// acting user id is always an explicit parameter; the service holds no
// notion of a current user.
type StateService struct {
	store *storage.Store
	log   *slog.Logger
}

func NewStateService(store *storage.Store, logger *slog.Logger) *StateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateService{store: store, log: logger}
}

func (s *StateService) Navigation(ctx context.Context, userID int64) (*storage.NavigationState, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.store.Navigation.Get(ctx, userID)
}

func (s *StateService) SaveNavigation(ctx context.Context, req SaveNavigationRequest) (*storage.NavigationState, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("save navigation: store is nil")
	}
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}
	if err := validateNavigation(req.LastModule); err != nil {
		return nil, err
	}

	state := &storage.NavigationState{
		UserID:     req.UserID,
		Expanded:   req.Expanded,
		LastModule: req.LastModule,
	}
	if err := s.store.Navigation.Save(ctx, state); err != nil {
		s.log.Error("save navigation state failed", "user_id", req.UserID, "error", err)
		return nil, err
	}
	return state, nil
}

func (s *StateService) Theme(ctx context.Context, userID int64) (*storage.ThemeState, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.store.Themes.Get(ctx, userID)
}

func (s *StateService) SaveTheme(ctx context.Context, req SaveThemeRequest) (*storage.ThemeState, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("save theme: store is nil")
	}
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}
	if err := validateTheme(req.ThemeName, req.CustomSettings); err != nil {
		return nil, err
	}

	state := &storage.ThemeState{
		UserID:         req.UserID,
		ThemeName:      req.ThemeName,
		CustomSettings: req.CustomSettings,
	}
	if err := s.store.Themes.Save(ctx, state); err != nil {
		s.log.Error("save theme state failed", "user_id", req.UserID, "error", err)
		return nil, err
	}
	return state, nil
}
