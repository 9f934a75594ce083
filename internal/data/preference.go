package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
)

// preferenceRepo implements PreferenceRepo as a flat JSON object (user id -> bool).
// The whole file is read on every lookup and rewritten on every update.
type preferenceRepo struct {
	path string
	mu   sync.Mutex
}

// NewPreferenceRepo creates a new file-backed preference repository
func NewPreferenceRepo(path string) repo.PreferenceRepo {
	return &preferenceRepo{path: path}
}

// IsOptedIn implements PreferenceRepo
func (r *preferenceRepo) IsOptedIn(ctx context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := r.load()
	if err != nil {
		return false, err
	}
	return prefs[userID], nil
}

// SetOptIn implements PreferenceRepo
func (r *preferenceRepo) SetOptIn(ctx context.Context, userID string, optedIn bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs, err := r.load()
	if err != nil {
		return err
	}
	prefs[userID] = optedIn
	return r.save(prefs)
}

func (r *preferenceRepo) load() (map[string]bool, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs := map[string]bool{}
	if len(data) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	// a file holding null decodes to a nil map
	if prefs == nil {
		prefs = map[string]bool{}
	}
	return prefs, nil
}

// save writes to a temp file and renames it over the old one so readers never see a partial file
func (r *preferenceRepo) save(prefs map[string]bool) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
