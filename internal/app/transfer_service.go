package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"

	"github.com/seanrobertwright/Odin-OpenSpec/internal/crypto"
	"github.com/seanrobertwright/Odin-OpenSpec/internal/storage"
)

const (
	profileBundleVersion = 1

	kdfUserKey  = "hkdf-user"
	kdfArgon2id = "argon2id"

	// maxExportFileSize caps import reads to keep crafted files from
	// exhausting memory.
	maxExportFileSize = 64 << 20
)

var exportAAD = []byte("odin.profile.v1")

type exportEnvelope struct {
	Version      int                   `json:"version"`
	KDF          string                `json:"kdf"`
	Argon2Params *envelopeArgon2Params `json:"argon2_params,omitempty"`
	Salt         []byte                `json:"salt"`
	Nonce        []byte                `json:"nonce"`
	Ciphertext   []byte                `json:"ciphertext"`
}

type envelopeArgon2Params struct {
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
	SaltLen     int    `json:"salt_len"`
	KeyLen      uint32 `json:"key_len"`
}

// TransferService exports a profile (user, preferences, navigation and theme
// state) to an encrypted file and restores such files. Default exports are
// keyed to the current OS user via the keyring; passphrase exports are
// portable across machines.
type TransferService struct {
	store   *storage.Store
	keyring *crypto.Keyring
	log     *slog.Logger
}

func NewTransferService(store *storage.Store, keyring *crypto.Keyring, logger *slog.Logger) *TransferService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferService{store: store, keyring: keyring, log: logger}
}

func (s *TransferService) Export(ctx context.Context, req ExportRequest) (*ProfileBundle, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("export profile: store is nil")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, fmt.Errorf("%w: output path is required", ErrValidation)
	}
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}

	bundle, err := s.collectBundle(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: encode bundle: %w", ErrBackup, err)
	}

	envelope, err := s.sealEnvelope(payload, req.Passphrase)
	if err != nil {
		return nil, err
	}
	output, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: encode envelope: %w", ErrBackup, err)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o700); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %w", ErrBackup, err)
	}
	if err := os.WriteFile(req.OutputPath, output, 0o600); err != nil {
		s.log.Error("export profile failed", "user_id", req.UserID, "error", err)
		return nil, fmt.Errorf("%w: write output: %w", ErrBackup, err)
	}

	s.log.Info("profile exported",
		"user_id", req.UserID,
		"export_id", bundle.ExportID,
		"preferences", len(bundle.Preferences),
		"portable", len(req.Passphrase) > 0)
	return bundle, nil
}

// Import decrypts and restores an exported profile. The restored user is
// assigned a fresh id and every record is re-keyed to it; all inserts run in
// one transaction, so a failed import leaves the store unchanged.
func (s *TransferService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("import profile: store is nil")
	}
	if strings.TrimSpace(req.InputPath) == "" {
		return nil, fmt.Errorf("%w: input path is required", ErrValidation)
	}

	payload, err := s.openEnvelope(req.InputPath, req.Passphrase)
	if err != nil {
		return nil, err
	}

	var bundle ProfileBundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return nil, fmt.Errorf("%w: decode bundle: %w", ErrBackup, err)
	}
	if bundle.Version != profileBundleVersion {
		return nil, fmt.Errorf("%w: unsupported bundle version %d", ErrBackup, bundle.Version)
	}
	if err := validateUserName(bundle.User.Name); err != nil {
		return nil, err
	}
	if err := validatePhotoPath(bundle.User.PhotoPath); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.store.InTx(ctx, func(r storage.Repos) error {
		user := &storage.User{Name: bundle.User.Name, PhotoPath: bundle.User.PhotoPath}
		if err := r.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("%w: restore user: %w", ErrBackup, err)
		}
		result.UserID = user.ID

		for _, pref := range bundle.Preferences {
			if err := validatePreference(pref.Key, pref.Value, pref.DataType); err != nil {
				return err
			}
			if err := r.Preferences.Set(ctx, &storage.Preference{
				UserID:   user.ID,
				Key:      pref.Key,
				Value:    pref.Value,
				DataType: pref.DataType,
			}); err != nil {
				return fmt.Errorf("%w: restore preference %q: %w", ErrBackup, pref.Key, err)
			}
			result.Preferences++
		}

		if bundle.Navigation != nil {
			if err := validateNavigation(bundle.Navigation.LastModule); err != nil {
				return err
			}
			if err := r.Navigation.Save(ctx, &storage.NavigationState{
				UserID:     user.ID,
				Expanded:   bundle.Navigation.Expanded,
				LastModule: bundle.Navigation.LastModule,
			}); err != nil {
				return fmt.Errorf("%w: restore navigation state: %w", ErrBackup, err)
			}
			result.Navigation = true
		}

		if bundle.Theme != nil {
			if err := validateTheme(bundle.Theme.ThemeName, bundle.Theme.CustomSettings); err != nil {
				return err
			}
			if err := r.Themes.Save(ctx, &storage.ThemeState{
				UserID:         user.ID,
				ThemeName:      bundle.Theme.ThemeName,
				CustomSettings: bundle.Theme.CustomSettings,
			}); err != nil {
				return fmt.Errorf("%w: restore theme state: %w", ErrBackup, err)
			}
			result.Theme = true
		}
		return nil
	})
	if err != nil {
		s.log.Error("import profile failed", "path", req.InputPath, "error", err)
		return nil, err
	}

	s.log.Info("profile imported",
		"user_id", result.UserID,
		"export_id", bundle.ExportID,
		"preferences", result.Preferences)
	return result, nil
}

func (s *TransferService) collectBundle(ctx context.Context, userID int64) (*ProfileBundle, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export profile: load user: %w", err)
	}

	prefs, err := s.store.Preferences.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export profile: list preferences: %w", err)
	}

	bundle := &ProfileBundle{
		Version:   profileBundleVersion,
		ExportID:  uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		User: ExportUser{
			Name:        user.Name,
			PhotoPath:   user.PhotoPath,
			CreatedDate: user.CreatedAt.Format(time.RFC3339Nano),
		},
		Preferences: make([]ExportPreference, 0, len(prefs)),
	}
	for _, pref := range prefs {
		bundle.Preferences = append(bundle.Preferences, ExportPreference{
			Key:      pref.Key,
			Value:    pref.Value,
			DataType: pref.DataType,
		})
	}

	nav, err := s.store.Navigation.Get(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("export profile: load navigation state: %w", err)
	}
	if nav != nil {
		bundle.Navigation = &ExportNavigation{Expanded: nav.Expanded, LastModule: nav.LastModule}
	}

	theme, err := s.store.Themes.Get(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("export profile: load theme state: %w", err)
	}
	if theme != nil {
		bundle.Theme = &ExportTheme{ThemeName: theme.ThemeName, CustomSettings: theme.CustomSettings}
	}

	return bundle, nil
}

func (s *TransferService) sealEnvelope(payload, passphrase []byte) (*exportEnvelope, error) {
	salt, err := crypto.RandomSalt(crypto.DefaultArgon2SaltLen)
	if err != nil {
		return nil, fmt.Errorf("%w: generate salt: %w", ErrBackup, err)
	}
	nonce, err := crypto.RandomNonce()
	if err != nil {
		return nil, fmt.Errorf("%w: generate nonce: %w", ErrBackup, err)
	}

	envelope := &exportEnvelope{
		Version: profileBundleVersion,
		Salt:    salt,
		Nonce:   nonce,
	}

	var key []byte
	if len(passphrase) > 0 {
		params := crypto.DefaultArgon2Params()
		key, err = crypto.DeriveKeyFromPassphrase(passphrase, salt, params)
		if err != nil {
			return nil, fmt.Errorf("%w: derive passphrase key: %w", ErrBackup, err)
		}
		envelope.KDF = kdfArgon2id
		envelope.Argon2Params = &envelopeArgon2Params{
			Memory:      params.Memory,
			Iterations:  params.Iterations,
			Parallelism: params.Parallelism,
			SaltLen:     params.SaltLen,
			KeyLen:      params.KeyLen,
		}
		defer memguard.WipeBytes(key)
	} else {
		buf, err := s.keyring.ExportKey(salt)
		if err != nil {
			return nil, fmt.Errorf("%w: derive user key: %w", ErrBackup, err)
		}
		defer buf.Destroy()
		key = buf.Bytes()
		envelope.KDF = kdfUserKey
	}

	ciphertext, err := crypto.SealXChaCha20Poly1305(key, nonce, payload, exportAAD)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt payload: %w", ErrBackup, err)
	}
	envelope.Ciphertext = ciphertext
	return envelope, nil
}

func (s *TransferService) openEnvelope(path string, passphrase []byte) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read export file: %w", ErrBackup, err)
	}
	if info.Size() > maxExportFileSize {
		return nil, fmt.Errorf("%w: export file exceeds %d MiB limit", ErrBackup, maxExportFileSize>>20)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read export file: %w", ErrBackup, err)
	}

	var envelope exportEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", ErrBackup, err)
	}
	if envelope.Version != profileBundleVersion {
		return nil, fmt.Errorf("%w: unsupported export version %d", ErrBackup, envelope.Version)
	}

	var key []byte
	switch envelope.KDF {
	case kdfArgon2id:
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("%w: export requires a passphrase", ErrValidation)
		}
		params := crypto.DefaultArgon2Params()
		if envelope.Argon2Params != nil {
			params, err = crypto.Argon2Params{
				Memory:      envelope.Argon2Params.Memory,
				Iterations:  envelope.Argon2Params.Iterations,
				Parallelism: envelope.Argon2Params.Parallelism,
				SaltLen:     envelope.Argon2Params.SaltLen,
				KeyLen:      envelope.Argon2Params.KeyLen,
			}.ClampUntrusted()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBackup, err)
			}
		}
		key, err = crypto.DeriveKeyFromPassphrase(passphrase, envelope.Salt, params)
		if err != nil {
			return nil, fmt.Errorf("%w: derive passphrase key: %w", ErrBackup, err)
		}
		defer memguard.WipeBytes(key)
	case kdfUserKey, "":
		buf, err := s.keyring.ExportKey(envelope.Salt)
		if err != nil {
			return nil, fmt.Errorf("%w: derive user key: %w", ErrBackup, err)
		}
		defer buf.Destroy()
		key = buf.Bytes()
	default:
		return nil, fmt.Errorf("%w: unsupported kdf %q", ErrBackup, envelope.KDF)
	}

	plaintext, err := crypto.OpenXChaCha20Poly1305(key, envelope.Nonce, envelope.Ciphertext, exportAAD)
	if err != nil {
		// Wrong account/machine or a corrupted file; distinguishable from a
		// missing source via errors.Is(err, crypto.ErrAuthenticationFailed).
		return nil, fmt.Errorf("%w: decrypt payload: %w", ErrBackup, err)
	}
	return plaintext, nil
}
