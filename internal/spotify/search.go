package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
)

// SearchTracks runs a free-text track search.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]mood.Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, c.requestOptions(limit)...)
	if err != nil {
		return nil, wrapError(err, "searching tracks %q", query)
	}
	if result.Tracks == nil {
		return nil, nil
	}
	return convertTracks(result.Tracks.Tracks), nil
}

// SearchGenre finds tracks tagged with a genre.
func (c *Client) SearchGenre(ctx context.Context, genre string, limit int) ([]mood.Track, error) {
	return c.SearchTracks(ctx, genreQuery(genre), limit)
}

// FirstPlaylist returns the ID of the first playlist matching query.
// ok is false when the search finds nothing.
func (c *Client) FirstPlaylist(ctx context.Context, query string) (id string, ok bool, err error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypePlaylist, c.requestOptions(playlistSearchLimit)...)
	if err != nil {
		return "", false, wrapError(err, "searching playlists %q", query)
	}
	if result.Playlists == nil {
		return "", false, nil
	}
	// The API may return null placeholders for removed playlists.
	for _, p := range result.Playlists.Playlists {
		if p.ID != "" {
			return p.ID.String(), true, nil
		}
	}
	return "", false, nil
}

// playlistSearchLimit leaves room to skip null placeholders ahead of the first real hit.
const playlistSearchLimit = 5

func genreQuery(genre string) string {
	return fmt.Sprintf("genre:%q", genre)
}
