package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appDirName      = "jobsearch"
	credentialsFile = "credentials.yaml"
)

// ErrNotFound is returned by Load when no credential has been stored.
var ErrNotFound = errors.New("api key not found")

type credentialRecord struct {
	APIKey string `yaml:"api_key"`
}

// CredentialRepository keeps a single API key in a per-user YAML file.
type CredentialRepository struct {
	path string
}

// NewCredentialRepository stores the key under dir. An empty dir resolves
// to <UserConfigDir>/jobsearch.
func NewCredentialRepository(dir string) (*CredentialRepository, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("error resolving config directory: %w", err)
		}
		dir = filepath.Join(base, appDirName)
	}

	return &CredentialRepository{path: filepath.Join(dir, credentialsFile)}, nil
}

func (r *CredentialRepository) Path() string {
	return r.path
}

// Load returns the stored key, or ErrNotFound if the file is absent or empty.
func (r *CredentialRepository) Load() (string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", r.path, err)
	}

	var record credentialRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return "", fmt.Errorf("error parsing %s: %w", r.path, err)
	}

	key := strings.TrimSpace(record.APIKey)
	if key == "" {
		return "", ErrNotFound
	}

	return key, nil
}

// Save overwrites any stored key. The file ends up readable by the owner only.
func (r *CredentialRepository) Save(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("api key must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(credentialRecord{APIKey: value})
	if err != nil {
		return fmt.Errorf("error encoding credentials: %w", err)
	}

	// CreateTemp opens with 0600, so the key never sits in a wider file.
	tmp, err := os.CreateTemp(filepath.Dir(r.path), credentialsFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("error replacing %s: %w", r.path, err)
	}

	return nil
}

// Delete removes the stored key. Deleting when nothing is stored is not an error.
func (r *CredentialRepository) Delete() error {
	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error removing %s: %w", r.path, err)
	}
	return nil
}

// Exists reports whether a credentials file is present.
func (r *CredentialRepository) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// Mask hides all but the edges of a key for display.
func Mask(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
