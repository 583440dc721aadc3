package app

import (
	"errors"
)

var (
	ErrValidation = errors.New("app: validation failed")
	ErrBackup     = errors.New("app: backup failed")
)

// Field limits carried over from the desktop schema.
const (
	MaxUserNameLen       = 100
	MaxPhotoPathLen      = 500
	MaxPreferenceKeyLen  = 100
	MaxPreferenceValLen  = 1000
	MaxDataTypeLen       = 50
	MaxLastModuleLen     = 100
	MaxThemeNameLen      = 50
	MaxCustomSettingsLen = 2000
)

type CreateUserRequest struct {
	Name      string
	PhotoPath string
}

// UpdateUserRequest is a full-record overwrite keyed by ID.
type UpdateUserRequest struct {
	ID        int64
	Name      string
	PhotoPath string
	Active    bool
}

type SetPreferenceRequest struct {
	UserID   int64
	Key      string
	Value    string
	DataType string
}

type SaveNavigationRequest struct {
	UserID     int64
	Expanded   bool
	LastModule string
}

type SaveThemeRequest struct {
	UserID         int64
	ThemeName      string
	CustomSettings string
}

type ExportRequest struct {
	UserID     int64
	OutputPath string
	// Passphrase switches the export to a portable Argon2id-protected file.
	// When empty the export is bound to the current OS user's keyring and
	// cannot be imported under another account or machine.
	Passphrase []byte
}

type ImportRequest struct {
	InputPath  string
	Passphrase []byte
}

type ImportResult struct {
	UserID      int64 `json:"user_id"`
	Preferences int   `json:"preferences"`
	Navigation  bool  `json:"navigation"`
	Theme       bool  `json:"theme"`
}

// ProfileBundle is the pre-encryption export payload.
type ProfileBundle struct {
	Version     int                `json:"version"`
	ExportID    string             `json:"export_id"`
	CreatedAt   string             `json:"created_at"`
	User        ExportUser         `json:"user"`
	Preferences []ExportPreference `json:"preferences"`
	Navigation  *ExportNavigation  `json:"navigation,omitempty"`
	Theme       *ExportTheme       `json:"theme,omitempty"`
}

type ExportUser struct {
	Name        string `json:"name"`
	PhotoPath   string `json:"photo_path,omitempty"`
	CreatedDate string `json:"created_date"`
}

type ExportPreference struct {
	Key      string `json:"key"`
	Value    string `json:"value,omitempty"`
	DataType string `json:"data_type,omitempty"`
}

type ExportNavigation struct {
	Expanded   bool   `json:"is_expanded"`
	LastModule string `json:"last_module,omitempty"`
}

type ExportTheme struct {
	ThemeName      string `json:"theme_name"`
	CustomSettings string `json:"custom_settings,omitempty"`
}
