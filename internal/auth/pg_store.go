package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-mood-mixer/internal/db"
)

// TokenRepository is the subset of db.TokenRepository the store needs.
type TokenRepository interface {
	Get(ctx context.Context, name string) (*db.CatalogToken, error)
	Upsert(ctx context.Context, tok *db.CatalogToken) error
}

// PGTokenStore stores the token in PostgreSQL so several instances share it.
// Rows are keyed by StoreKey(clientID).
type PGTokenStore struct {
	tokens TokenRepository
	name   string
}

// NewPGTokenStore creates a database-backed token store for one client.
func NewPGTokenStore(tokens TokenRepository, clientID string) *PGTokenStore {
	return &PGTokenStore{tokens: tokens, name: StoreKey(clientID)}
}

// Load reads the token row. Returns (nil, nil) if none exists.
func (s *PGTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	row, err := s.tokens.Get(ctx, s.name)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}

	return &oauth2.Token{
		AccessToken: row.AccessToken,
		TokenType:   row.TokenType,
		Expiry:      row.Expiry,
	}, nil
}

// Save upserts the token row.
func (s *PGTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}
	return s.tokens.Upsert(ctx, &db.CatalogToken{
		Name:        s.name,
		AccessToken: token.AccessToken,
		TokenType:   token.Type(),
		Expiry:      token.Expiry,
	})
}

var _ TokenRepository = (*db.TokenRepository)(nil)
