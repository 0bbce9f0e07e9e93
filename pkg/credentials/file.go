package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Secret is the on-disk form of a stored credential.
type Secret struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore keeps one 0600 JSON file per secret in a private directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based secret store.
// If baseDir is empty, defaults to ~/.config/stackrules/credentials/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "stackrules", "credentials")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create credentials dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) secretPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// Get returns the stored secret, or nil if none is stored under name.
func (s *FileStore) Get(_ context.Context, name string) (*Secret, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.secretPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	var sec Secret
	if err := json.Unmarshal(data, &sec); err != nil {
		return nil, fmt.Errorf("parse credential %s: %w", name, err)
	}
	return &sec, nil
}

// Set stores value under name, replacing any previous value.
func (s *FileStore) Set(_ context.Context, name, value string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("credential %s: empty value", name)
	}
	data, err := json.MarshalIndent(Secret{Name: name, Value: value, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.baseDir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.secretPath(name)); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

// Delete removes a secret. Deleting a missing secret is not an error.
func (s *FileStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.secretPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

// List returns the names of all stored secrets, sorted.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read credentials dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetSecret implements [Provider]. Read errors count as missing.
func (s *FileStore) GetSecret(ctx context.Context, name string) (string, bool) {
	sec, err := s.Get(ctx, name)
	if err != nil || sec == nil || sec.Value == "" {
		return "", false
	}
	return sec.Value, true
}

// Path returns the directory holding the secret files.
func (s *FileStore) Path() string {
	return s.baseDir
}
