package e2ee

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// keySize is the AES-256 key size.
	keySize = 32
	// nonceSize is the nonce size for AES-GCM.
	nonceSize = 12

	// envelopePrefix tags ciphertext envelopes with algorithm and format
	// version so future formats can coexist.
	envelopePrefix = "e2ee:v1:"
)

// ErrNoKey is returned when decryption is attempted without a local key.
// It is a first-class state, not a fault: it is what gates profile hydration
// until the user imports a backup (the recovery flow).
var ErrNoKey = errors.New("no local encryption key")

// KeyFileName is the fixed name of the key file inside a data directory.
const KeyFileName = "e2ee.key"

// Manager owns the installation's symmetric key. No other component may read
// the raw material; everything goes through encrypt/decrypt/export/import.
type Manager struct {
	path   string
	logger *log.Logger

	mu  sync.Mutex
	key []byte // nil until loaded or generated
}

// NewManager creates a manager storing its key at path. The key file is not
// read until first use. If logger is nil, a default logger writing to stderr
// is used.
func NewManager(path string, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(os.Stderr, "[e2ee] ", log.LstdFlags)
	}
	return &Manager{path: path, logger: logger}
}

// HasLocalKey reports whether this installation holds a key.
func (m *Manager) HasLocalKey() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked() == nil
}

// loadLocked reads the key file into memory. Returns ErrNoKey if the file
// does not exist or does not hold exactly one AES-256 key.
func (m *Manager) loadLocked() error {
	if m.key != nil {
		return nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return ErrNoKey
	}
	if len(data) != keySize {
		m.logger.Printf("WARNING: key file %s has wrong size %d, ignoring", m.path, len(data))
		return ErrNoKey
	}
	m.key = data
	return nil
}

// ensureKeyLocked loads the key, generating and persisting a fresh one if
// none exists yet (NoKey -> KeyPresent, the only forward transition).
func (m *Manager) ensureKeyLocked() error {
	if m.loadLocked() == nil {
		return nil
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := m.writeKeyLocked(key); err != nil {
		return err
	}
	m.logger.Printf("Generated new encryption key")
	return nil
}

// writeKeyLocked persists raw key material with owner-only permissions and
// installs it in memory.
func (m *Manager) writeKeyLocked(key []byte) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(m.path, key, 0o600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	m.key = key
	return nil
}

// aeadLocked builds the AES-GCM cipher for the loaded key.
func (m *Manager) aeadLocked() (cipher.AEAD, error) {
	block, err := aes.NewCipher(m.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptString encrypts plaintext into an opaque envelope string. A key is
// generated on first use.
func (m *Manager) EncryptString(plaintext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureKeyLocked(); err != nil {
		return "", err
	}
	gcm, err := m.aeadLocked()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	// Nonce prepended to ciphertext, the whole thing base64ed.
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return envelopePrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// EncryptStringPtr maps nil to nil without invoking the cipher; otherwise it
// behaves like EncryptString. Optional profile fields use this form.
func (m *Manager) EncryptStringPtr(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}
	env, err := m.EncryptString(*plaintext)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// DecryptString recovers the plaintext of an envelope produced by
// EncryptString. Without a local key it returns ErrNoKey; decryption is
// never the place a key gets created.
func (m *Manager) DecryptString(envelope string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return "", err
	}

	encoded, ok := strings.CutPrefix(envelope, envelopePrefix)
	if !ok {
		return "", fmt.Errorf("unrecognized envelope format")
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("corrupt envelope: %w", err)
	}
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("corrupt envelope: too short")
	}

	gcm, err := m.aeadLocked()
	if err != nil {
		return "", err
	}
	plaintext, err := gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt field: %w", err)
	}
	return string(plaintext), nil
}

// DecryptStringPtr maps nil and empty envelopes to nil; otherwise it behaves
// like DecryptString.
func (m *Manager) DecryptStringPtr(envelope *string) (*string, error) {
	if envelope == nil || *envelope == "" {
		return nil, nil
	}
	plain, err := m.DecryptString(*envelope)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}
