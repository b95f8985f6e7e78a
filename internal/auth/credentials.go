// Package auth obtains and caches the application's catalog access token
// using the OAuth2 client-credentials grant.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// DefaultExpiryMargin is how long before expiry a cached token is replaced.
const DefaultExpiryMargin = time.Minute

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET")

	// ErrAuthentication is returned when the credential exchange fails.
	ErrAuthentication = errors.New("catalog authentication failed")
)

// TokenFetcher exchanges credentials for a fresh token.
// *clientcredentials.Config satisfies it.
type TokenFetcher interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// CredentialCache hands out a shared bearer token and refreshes it when it
// nears expiry. Concurrent refreshes are collapsed into one exchange.
type CredentialCache struct {
	fetcher    TokenFetcher
	store      TokenStore
	httpClient *http.Client
	log        logrus.FieldLogger
	margin     time.Duration
	now        func() time.Time

	mu     sync.RWMutex
	token  *oauth2.Token
	loaded bool

	group singleflight.Group
}

// Option configures a CredentialCache.
type Option func(*CredentialCache)

// WithStore persists tokens across restarts.
func WithStore(store TokenStore) Option {
	return func(c *CredentialCache) {
		if store != nil {
			c.store = store
		}
	}
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(client *http.Client) Option {
	return func(c *CredentialCache) {
		c.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *CredentialCache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithExpiryMargin sets how early a token is considered expired.
func WithExpiryMargin(d time.Duration) Option {
	return func(c *CredentialCache) {
		if d >= 0 {
			c.margin = d
		}
	}
}

// New creates a CredentialCache for the Spotify accounts service.
// Returns ErrMissingCredentials if either value is empty.
func New(clientID, clientSecret string, opts ...Option) (*CredentialCache, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return NewCredentialCache(cfg, opts...), nil
}

// NewCredentialCache creates a cache around an arbitrary token fetcher.
func NewCredentialCache(fetcher TokenFetcher, opts ...Option) *CredentialCache {
	c := &CredentialCache{
		fetcher: fetcher,
		store:   &MemoryTokenStore{},
		log:     logrus.StandardLogger(),
		margin:  DefaultExpiryMargin,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token implements oauth2.TokenSource.
func (c *CredentialCache) Token() (*oauth2.Token, error) {
	return c.TokenContext(context.Background())
}

// TokenContext returns a valid token, refreshing it if needed.
// Failures are reported as ErrAuthentication.
func (c *CredentialCache) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	if tok := c.cached(); tok != nil {
		return tok, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited for the flight.
		if tok := c.cached(); tok != nil {
			return tok, nil
		}
		if tok := c.loadStored(ctx); tok != nil {
			return tok, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.Token), nil
}

// Invalidate drops the cached token so the next call refreshes it.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// Client returns an HTTP client that authorizes every request with the
// cached token. The base client's timeout and transport are kept.
func (c *CredentialCache) Client(base *http.Client) *http.Client {
	var (
		transport http.RoundTripper = http.DefaultTransport
		timeout   time.Duration
	)
	if base != nil {
		if base.Transport != nil {
			transport = base.Transport
		}
		timeout = base.Timeout
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: c, Base: transport},
		Timeout:   timeout,
	}
}

func (c *CredentialCache) cached() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.valid(c.token) {
		return c.token
	}
	return nil
}

func (c *CredentialCache) valid(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return false
	}
	if tok.Expiry.IsZero() {
		return true
	}
	return c.now().Add(c.margin).Before(tok.Expiry)
}

// loadStored consults the store once per process.
func (c *CredentialCache) loadStored(ctx context.Context) *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}
	c.loaded = true

	tok, err := c.store.Load(ctx)
	if err != nil {
		c.log.WithError(err).Warn("loading stored catalog token")
		return nil
	}
	if !c.valid(tok) {
		return nil
	}
	c.token = tok
	return tok
}

func (c *CredentialCache) refresh(ctx context.Context) (*oauth2.Token, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	tok, err := c.fetcher.Token(ctx)
	if err != nil {
		c.log.WithError(err).Error("catalog token exchange failed")
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if tok == nil || tok.AccessToken == "" {
		c.log.Error("catalog token exchange returned no access token")
		return nil, fmt.Errorf("%w: empty access token", ErrAuthentication)
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()

	if err := c.store.Save(ctx, tok); err != nil {
		// Auth succeeded; persistence is best effort.
		c.log.WithError(err).Warn("saving catalog token")
	}

	c.log.WithField("expiry", tok.Expiry.Format(time.RFC3339)).Debug("refreshed catalog token")
	return tok, nil
}
