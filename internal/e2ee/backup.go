package e2ee

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// backupSaltSize is the salt size for passphrase key derivation.
	backupSaltSize = 32
	// backupIterations is the PBKDF2 iteration count. Fixed and
	// deliberately slow to resist offline brute force of the passphrase.
	backupIterations = 100000
	// backupVersion is the current payload format version.
	backupVersion = 1
)

// ErrWrongPassphrase is returned by ImportBackup when the wrapped key fails
// its integrity check: the passphrase is wrong or the payload is corrupt.
// It is distinct from remote.ErrNoBackup so the caller can tell "wrong
// passphrase" apart from "nothing to restore".
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupt backup payload")

// backupPayload is the JSON shape inside an exported backup string. The salt
// and derivation parameters travel with the payload so any device can
// re-derive the wrapping key from the passphrase alone.
type backupPayload struct {
	Version    int    `json:"v"`
	Salt       []byte `json:"salt"`
	Iterations int    `json:"iter"`
	Wrapped    []byte `json:"wrapped"` // nonce || AES-GCM(wrapping key, raw key)
}

// ExportBackup wraps the local key with a passphrase-derived key and returns
// a portable opaque payload. A key is generated first if none exists.
//
// The salt is freshly random per export, so exporting the same key twice
// produces different payloads.
func (m *Manager) ExportBackup(passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureKeyLocked(); err != nil {
		return "", err
	}

	salt := make([]byte, backupSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	wrappingKey := pbkdf2.Key([]byte(passphrase), salt, backupIterations, keySize, sha256.New)

	gcm, err := newGCM(wrappingKey)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	wrapped := gcm.Seal(nonce, nonce, m.key, nil)

	data, err := json.Marshal(backupPayload{
		Version:    backupVersion,
		Salt:       salt,
		Iterations: backupIterations,
		Wrapped:    wrapped,
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ImportBackup unwraps a payload produced by ExportBackup and installs the
// enclosed key as this installation's key.
//
// A failed integrity check returns ErrWrongPassphrase and leaves any
// existing local key untouched.
func (m *Manager) ImportBackup(payload, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase cannot be empty")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrWrongPassphrase
	}
	var bp backupPayload
	if err := json.Unmarshal(data, &bp); err != nil {
		return ErrWrongPassphrase
	}
	if bp.Version != backupVersion {
		return fmt.Errorf("unsupported backup payload version %d", bp.Version)
	}
	if len(bp.Salt) != backupSaltSize || bp.Iterations <= 0 || len(bp.Wrapped) < nonceSize {
		return ErrWrongPassphrase
	}

	wrappingKey := pbkdf2.Key([]byte(passphrase), bp.Salt, bp.Iterations, keySize, sha256.New)
	gcm, err := newGCM(wrappingKey)
	if err != nil {
		return err
	}
	key, err := gcm.Open(nil, bp.Wrapped[:nonceSize], bp.Wrapped[nonceSize:], nil)
	if err != nil {
		return ErrWrongPassphrase
	}
	if len(key) != keySize {
		return ErrWrongPassphrase
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeKeyLocked(key); err != nil {
		return err
	}
	m.logger.Printf("Imported encryption key from backup")
	return nil
}

// newGCM builds an AES-GCM cipher for a raw 32-byte key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
