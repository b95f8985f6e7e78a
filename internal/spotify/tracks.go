package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
)

func convertTracks(full []spotify.FullTrack) []mood.Track {
	tracks := make([]mood.Track, 0, len(full))
	for _, ft := range full {
		if ft.ID == "" {
			continue
		}
		tracks = append(tracks, convertTrack(ft))
	}
	return tracks
}

// convertTrack converts a Spotify FullTrack to mood.Track.
// The album's first image is the largest one the API returns.
func convertTrack(ft spotify.FullTrack) mood.Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	var art string
	if len(ft.Album.Images) > 0 {
		art = ft.Album.Images[0].URL
	}

	return mood.Track{
		ID:          ft.ID.String(),
		Title:       ft.Name,
		Artists:     artists,
		AlbumName:   ft.Album.Name,
		AlbumArtURL: art,
		PreviewURL:  ft.PreviewURL,
		ExternalURL: ft.ExternalURLs["spotify"],
	}
}
