// Package session owns the client session: the bearer token, the optional
// refresh token, and the decoded identity. It is the single writer of the
// durable token file; login, logout, and the gateway's 401 handling all go
// through the Store, and Clear is idempotent so the two clearing paths cannot
// conflict.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/prolianceltd/taskflow-cli/internal/client/models"
	"github.com/prolianceltd/taskflow-cli/internal/common"
)

// tokenFile is the on-disk shape of the persisted session.
type tokenFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Store holds the current session. A non-empty token always has a decoded
// identity; no token means unauthenticated.
type Store struct {
	mu       sync.RWMutex
	dir      string
	access   string
	refresh  string
	identity models.Identity
}

// NewStore creates a Store persisting to dir. An empty dir selects the
// default config directory ($XDG_CONFIG_HOME/taskflow or ~/.config/taskflow).
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultDir()
	}
	return &Store{dir: dir}
}

func defaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "taskflow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taskflow")
}

func (s *Store) tokenPath() string { return filepath.Join(s.dir, "token.json") }

// Set stores the session in memory and persists the tokens to disk.
func (s *Store) Set(access, refresh string, identity models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	s.refresh = refresh
	s.identity = identity

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenFile{AccessToken: access, RefreshToken: refresh}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.tokenPath(), data, 0o600)
}

// Clear drops the in-memory session and removes the token file. Calling it
// on an already-cleared store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
	s.identity = models.Identity{}
	_ = os.Remove(s.tokenPath())
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the stored refresh token, if any.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Identity returns the decoded identity and whether a session exists.
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.access != ""
}

// Authenticated reports whether a session token is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// Restore loads a previously persisted token and decodes its claims into
// the identity. A missing file leaves the store unauthenticated; a present
// but undecodable token is an invalid session and is cleared from disk.
func (s *Store) Restore() error {
	s.mu.Lock()
	path := s.tokenPath()
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil || tf.AccessToken == "" {
		s.Clear()
		return common.ErrInvalidToken
	}

	identity, err := DecodeIdentity(tf.AccessToken)
	if err != nil {
		s.Clear()
		return common.ErrInvalidToken
	}

	s.mu.Lock()
	s.access = tf.AccessToken
	s.refresh = tf.RefreshToken
	s.identity = identity
	s.mu.Unlock()
	return nil
}
