// Package spotify adapts the Spotify Web API catalog to the mood mixer's
// track model.
package spotify

import (
	"github.com/zmb3/spotify/v2"
)

// DefaultMarket is the catalog market used when none is configured.
const DefaultMarket = "US"

// MaxSearchLimit is the largest page size the search endpoint accepts.
const MaxSearchLimit = 50

// Client wraps the Spotify API client with catalog lookups.
type Client struct {
	api    *spotify.Client
	market string
}

// Option configures a Client.
type Option func(*Client)

// WithMarket restricts results to tracks playable in the given market.
// An empty market disables the restriction.
func WithMarket(market string) Option {
	return func(c *Client) {
		c.market = market
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already carry an authorizing transport.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{
		api:    api,
		market: DefaultMarket,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) requestOptions(limit int) []spotify.RequestOption {
	opts := []spotify.RequestOption{spotify.Limit(clampLimit(limit))}
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}
	return opts
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 1
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}
