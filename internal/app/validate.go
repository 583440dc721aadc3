package app

import (
	"fmt"
	"strings"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

func validateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: user name is required", ErrValidation)
	}
	if len(name) > MaxUserNameLen {
		return fmt.Errorf("%w: user name exceeds %d characters", ErrValidation, MaxUserNameLen)
	}
	return nil
}

func validatePhotoPath(path string) error {
	if len(path) > MaxPhotoPathLen {
		return fmt.Errorf("%w: photo path exceeds %d characters", ErrValidation, MaxPhotoPathLen)
	}
	return nil
}

func validatePreference(key, value, dataType string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: preference key is required", ErrValidation)
	}
	if len(key) > MaxPreferenceKeyLen {
		return fmt.Errorf("%w: preference key exceeds %d characters", ErrValidation, MaxPreferenceKeyLen)
	}
	if len(value) > MaxPreferenceValLen {
		return fmt.Errorf("%w: preference value exceeds %d characters", ErrValidation, MaxPreferenceValLen)
	}
	if len(dataType) > MaxDataTypeLen {
		return fmt.Errorf("%w: data type exceeds %d characters", ErrValidation, MaxDataTypeLen)
	}
	return nil
}

func validateNavigation(lastModule string) error {
	if len(lastModule) > MaxLastModuleLen {
		return fmt.Errorf("%w: last module exceeds %d characters", ErrValidation, MaxLastModuleLen)
	}
	return nil
}

func validateTheme(name, customSettings string) error {
	if len(name) > MaxThemeNameLen {
		return fmt.Errorf("%w: theme name exceeds %d characters", ErrValidation, MaxThemeNameLen)
	}
	if !storage.ValidThemeName(name) {
		return fmt.Errorf("%w: theme must be one of %s, %s, %s", ErrValidation, storage.ThemeLight, storage.ThemeDark, storage.ThemeSystem)
	}
	if len(customSettings) > MaxCustomSettingsLen {
		return fmt.Errorf("%w: custom settings exceed %d characters", ErrValidation, MaxCustomSettingsLen)
	}
	return nil
}

func validateUserID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrValidation)
	}
	return nil
}
