package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
)

// PlaylistTracks returns up to limit tracks from a playlist.
// Deleted tracks, local files and episodes are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]mood.Track, error) {
	page, err := c.api.GetPlaylistTracks(ctx, spotify.ID(playlistID), c.requestOptions(limit)...)
	if err != nil {
		return nil, wrapError(err, "fetching playlist %s tracks", playlistID)
	}

	var tracks []mood.Track
	for _, item := range page.Tracks {
		// Null entries decode to a zero track.
		if item.IsLocal || item.Track.ID == "" {
			continue
		}
		tracks = append(tracks, convertTrack(item.Track))
	}
	return tracks, nil
}
