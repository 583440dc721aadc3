package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	DefaultArgon2MemoryKiB  uint32 = 64 * 1024
	DefaultArgon2Iterations uint32 = 3
	DefaultArgon2SaltLen           = 32
	DefaultArgon2KeyLen     uint32 = KeySize
	MinArgon2MemoryKiB      uint32 = 16 * 1024

	// Bounds for Argon2 parameters read from untrusted export envelopes,
	// preventing memory/CPU exhaustion via crafted files.
	MaxUntrustedArgon2MemoryKiB  uint32 = 1 << 20
	MaxUntrustedArgon2Iterations uint32 = 20
)

var (
	ErrInvalidArgon2Params = errors.New("invalid argon2 parameters")
	ErrInvalidHKDFInput    = errors.New("invalid hkdf input")
)

type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

func DefaultArgon2Params() Argon2Params {
	parallelism := runtime.NumCPU()
	if parallelism > 4 {
		parallelism = 4
	}
	if parallelism < 1 {
		parallelism = 1
	}

	return Argon2Params{
		Memory:      DefaultArgon2MemoryKiB,
		Iterations:  DefaultArgon2Iterations,
		Parallelism: uint8(parallelism),
		SaltLen:     DefaultArgon2SaltLen,
		KeyLen:      DefaultArgon2KeyLen,
	}
}

func (p Argon2Params) Validate() error {
	switch {
	case p.Memory < MinArgon2MemoryKiB:
		return fmt.Errorf("%w: memory must be >= %d KiB", ErrInvalidArgon2Params, MinArgon2MemoryKiB)
	case p.Iterations == 0:
		return fmt.Errorf("%w: iterations must be > 0", ErrInvalidArgon2Params)
	case p.Parallelism == 0:
		return fmt.Errorf("%w: parallelism must be > 0", ErrInvalidArgon2Params)
	case p.SaltLen < 16:
		return fmt.Errorf("%w: salt length must be >= 16", ErrInvalidArgon2Params)
	case p.KeyLen == 0:
		return fmt.Errorf("%w: key length must be > 0", ErrInvalidArgon2Params)
	default:
		return nil
	}
}

// ClampUntrusted validates parameters that arrived inside an export envelope
// and caps them to safe bounds.
func (p Argon2Params) ClampUntrusted() (Argon2Params, error) {
	out := p
	if out.Memory < MinArgon2MemoryKiB {
		out.Memory = MinArgon2MemoryKiB
	}
	if out.Memory > MaxUntrustedArgon2MemoryKiB {
		return Argon2Params{}, fmt.Errorf("%w: memory %d KiB exceeds safe maximum %d KiB", ErrInvalidArgon2Params, p.Memory, MaxUntrustedArgon2MemoryKiB)
	}

	if out.Iterations < 1 {
		out.Iterations = 1
	}
	if out.Iterations > MaxUntrustedArgon2Iterations {
		return Argon2Params{}, fmt.Errorf("%w: iterations %d exceeds safe maximum %d", ErrInvalidArgon2Params, p.Iterations, MaxUntrustedArgon2Iterations)
	}

	if out.Parallelism < 1 {
		out.Parallelism = 1
	}
	if out.Parallelism > 16 {
		out.Parallelism = 16
	}
	if out.KeyLen != DefaultArgon2KeyLen {
		out.KeyLen = DefaultArgon2KeyLen
	}
	return out, nil
}

func DeriveKeyFromPassphrase(passphrase, salt []byte, params Argon2Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase must not be empty", ErrInvalidArgon2Params)
	}
	if len(salt) < params.SaltLen {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes", ErrInvalidArgon2Params, params.SaltLen)
	}

	return argon2.IDKey(passphrase, salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen), nil
}

func DeriveHKDFSHA256(ikm, salt, info []byte, length int) ([]byte, error) {
	if len(ikm) == 0 {
		return nil, fmt.Errorf("%w: ikm must not be empty", ErrInvalidHKDFInput)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: length must be > 0", ErrInvalidHKDFInput)
	}

	r := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("derive hkdf-sha256 output: %w", err)
	}
	return out, nil
}
