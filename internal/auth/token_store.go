package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

const (
	configDirName = "spotify-mood-mixer"
	tokensDirName = "tokens"
)

// TokenStore persists the catalog access token between process restarts.
type TokenStore interface {
	// Load returns (nil, nil) when no token has been stored.
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
}

// MemoryTokenStore keeps the token for the lifetime of the process only.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token *oauth2.Token
}

// Load returns the stored token, if any.
func (s *MemoryTokenStore) Load(_ context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Save replaces the stored token.
func (s *MemoryTokenStore) Save(_ context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// FileTokenStore stores the token as JSON on disk, tagged with the client ID
// it was issued to.
type FileTokenStore struct {
	path     string
	clientID string
}

// fileToken is the on-disk format.
type fileToken struct {
	ClientID string `json:"client_id"`
	oauth2.Token
}

// DefaultFileTokenStore returns a FileTokenStore using the default location:
// ~/.config/spotify-mood-mixer/tokens/<key>.json, where key is derived from
// the client ID so rotated credentials never pick up an old token.
func DefaultFileTokenStore(clientID string) (*FileTokenStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}

	path := filepath.Join(configDir, configDirName, tokensDirName, StoreKey(clientID)+".json")
	return &FileTokenStore{path: path, clientID: clientID}, nil
}

// NewFileTokenStore creates a FileTokenStore with a custom path.
func NewFileTokenStore(path, clientID string) *FileTokenStore {
	return &FileTokenStore{path: path, clientID: clientID}
}

// Path returns the file path where the token is stored.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the token from disk.
// Returns (nil, nil) if the file does not exist or holds another client's token.
func (s *FileTokenStore) Load(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var stored fileToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	if stored.ClientID != s.clientID {
		return nil, nil
	}

	return &stored.Token, nil
}

// Save writes the token to disk, creating the parent directory if needed.
func (s *FileTokenStore) Save(_ context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(fileToken{ClientID: s.clientID, Token: *token}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// StoreKey names a client's token in persistent stores.
func StoreKey(clientID string) string {
	sum := sha256.Sum256([]byte(clientID))
	return "spotify-" + hex.EncodeToString(sum[:8])
}

// Ensure stores implement TokenStore.
var (
	_ TokenStore = (*MemoryTokenStore)(nil)
	_ TokenStore = (*FileTokenStore)(nil)
	_ TokenStore = (*PGTokenStore)(nil)
)
