package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"

	"cofounder/pkg/api"
	"cofounder/pkg/chatclient"
)

var errNoSession = errors.New("not signed in, run `cofounder signin` first")

// savedSession is the on-disk form of a signed in session.
type savedSession struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func resolveSessionPath(p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return expanded, nil
}

func saveSession(path string, s *api.Session, now time.Time) error {
	data, err := json.MarshalIndent(savedSession{
		AccessToken: s.AccessToken,
		UserID:      s.User.ID,
		Email:       s.User.Email,
		ExpiresAt:   now.Add(time.Duration(s.ExpiresIn) * time.Second).UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// loadSession reads the session at path. A missing or expired session yields errNoSession.
func loadSession(path string, now time.Time) (*chatclient.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var saved savedSession
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	if saved.AccessToken == "" || saved.UserID == "" || !now.Before(saved.ExpiresAt) {
		return nil, errNoSession
	}
	return &chatclient.Session{
		UserID:      saved.UserID,
		Email:       saved.Email,
		AccessToken: saved.AccessToken,
		ExpiresAt:   saved.ExpiresAt,
	}, nil
}

func removeSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
