package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bonssss/chat-app/internal/backend"
)

// storedSession is the on-disk session format.
type storedSession struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

func configDir() string {
	if dir := os.Getenv("CHAT_APP_CONFIG"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chat-app")
}

func sessionPath() string {
	return filepath.Join(configDir(), "session.json")
}

// loadSession reads saved credentials from disk, nil when signed out.
func loadSession() *backend.Session {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		return nil
	}
	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if s.AccessToken == "" {
		return nil
	}
	return &backend.Session{UserID: s.UserID, Email: s.Email, AccessToken: s.AccessToken}
}

// saveSession persists credentials to disk.
func saveSession(s *backend.Session) error {
	if err := os.MkdirAll(configDir(), 0700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(storedSession{
		UserID:      s.UserID,
		Email:       s.Email,
		AccessToken: s.AccessToken,
	}, "", "  ")
	return os.WriteFile(sessionPath(), data, 0600)
}

// clearSession removes saved credentials.
func clearSession() {
	_ = os.Remove(sessionPath())
}
