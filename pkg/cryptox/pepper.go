package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// SetPepper installs the pepper mixed into every password hash.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

// Pepper returns the installed pepper, empty when none was loaded.
func Pepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}

// LoadPepper reads the pepper from file, generating and persisting a new one
// when the file does not exist yet, and installs it.
func LoadPepper(file string) error {
	p, err := loadOrGenerateSecret(file, func() ([]byte, error) {
		buf := make([]byte, keyLength)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		return []byte(base64.RawURLEncoding.EncodeToString(buf)), nil
	})
	if err != nil {
		return err
	}
	SetPepper(strings.TrimSpace(string(p)))
	return nil
}

// loadOrGenerateSecret returns the contents of file, creating it with the
// output of generate (mode 0600) when missing.
func loadOrGenerateSecret(file string, generate func() ([]byte, error)) ([]byte, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	data, err = generate()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, data, 0600); err != nil {
		return nil, err
	}
	return data, nil
}
