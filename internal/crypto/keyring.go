package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	osuser "os/user"
	"path/filepath"

	"github.com/awnumar/memguard"
)

const (
	keyFileName     = "export.key"
	exportKeyInfoV1 = "odin.export.v1"
)

// ErrKeyUnavailable reports that the per-user key material could not be
// created or read.
var ErrKeyUnavailable = errors.New("crypto: user key unavailable")

// Keyring manages the symmetric key material bound to the current OS user.
// The root key is a random 32-byte file created lazily in the per-user data
// directory with 0600 permissions; it is never written next to an export, so
// exports encrypted with a key derived from it cannot be opened under another
// account or on another machine.
type Keyring struct {
	dir string
}

func NewKeyring(dir string) *Keyring {
	return &Keyring{dir: dir}
}

// ExportKey derives the per-export key from the root key file, the supplied
// salt, and the current OS user identity.
func (k *Keyring) ExportKey(salt []byte) (*memguard.LockedBuffer, error) {
	if k == nil || k.dir == "" {
		return nil, fmt.Errorf("%w: keyring directory not set", ErrKeyUnavailable)
	}
	if len(salt) < 16 {
		return nil, fmt.Errorf("%w: salt must be >= 16 bytes", ErrInvalidHKDFInput)
	}

	root, err := k.loadOrCreateRootKey()
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(root)

	key, err := DeriveHKDFSHA256(root, salt, []byte(exportKeyInfoV1+":"+currentUserTag()), KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive export key: %w", err)
	}

	buf := memguard.NewBufferFromBytes(key)
	memguard.WipeBytes(key)
	return buf, nil
}

func (k *Keyring) loadOrCreateRootKey() ([]byte, error) {
	path := filepath.Join(k.dir, keyFileName)

	raw, err := os.ReadFile(path)
	if err == nil {
		if len(raw) != KeySize {
			return nil, fmt.Errorf("%w: key file %s has unexpected size %d", ErrKeyUnavailable, path, len(raw))
		}
		return raw, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read key file: %w", ErrKeyUnavailable, err)
	}

	root := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, root); err != nil {
		return nil, fmt.Errorf("%w: generate root key: %w", ErrKeyUnavailable, err)
	}

	if err := os.MkdirAll(k.dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create key directory: %w", ErrKeyUnavailable, err)
	}
	if err := os.WriteFile(path, root, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write key file: %w", ErrKeyUnavailable, err)
	}
	return root, nil
}

// currentUserTag binds derived keys to the OS-level user identity. Falling
// back to the USER env var keeps derivation stable on systems without
// user database access.
func currentUserTag() string {
	if u, err := osuser.Current(); err == nil {
		return u.Uid + ":" + u.Username
	}
	return "?:" + os.Getenv("USER")
}
