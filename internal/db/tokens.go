package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogToken is an application access token for an external catalog.
type CatalogToken struct {
	Name        string
	AccessToken string
	TokenType   string
	Expiry      time.Time
	UpdatedAt   time.Time
}

// TokenRepository handles catalog token database operations.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a token by name.
func (r *TokenRepository) Get(ctx context.Context, name string) (*CatalogToken, error) {
	query := `
		SELECT name, access_token, token_type, expiry, updated_at
		FROM catalog_tokens
		WHERE name = $1
	`
	var tok CatalogToken
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&tok.Name,
		&tok.AccessToken,
		&tok.TokenType,
		&tok.Expiry,
		&tok.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}
	return &tok, nil
}

// Upsert inserts or replaces a token.
func (r *TokenRepository) Upsert(ctx context.Context, tok *CatalogToken) error {
	query := `
		INSERT INTO catalog_tokens (name, access_token, token_type, expiry, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			token_type = EXCLUDED.token_type,
			expiry = EXCLUDED.expiry,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	_, err := r.pool.Exec(ctx, query,
		tok.Name,
		tok.AccessToken,
		tok.TokenType,
		tok.Expiry,
		now,
	)
	if err != nil {
		return fmt.Errorf("upserting token: %w", err)
	}
	tok.UpdatedAt = now
	return nil
}
