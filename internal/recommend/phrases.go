package recommend

import "github.com/justestif/go-spotify-mood-mixer/internal/mood"

// Phrases are the catalog search texts used for a mood.
type Phrases struct {
	Keyword  string // free-text track search
	Playlist string // playlist search
}

var phrases = map[mood.Tag]Phrases{
	mood.Happy:     {Keyword: "happy upbeat feel good", Playlist: "happy hits"},
	mood.Sad:       {Keyword: "sad melancholy heartbreak", Playlist: "sad songs"},
	mood.Energetic: {Keyword: "energetic high energy rock", Playlist: "energy boost"},
	mood.Chill:     {Keyword: "chill relaxing mellow", Playlist: "chill vibes"},
	mood.Stressed:  {Keyword: "calm relaxing soothing peaceful", Playlist: "stress relief"},
	mood.Romantic:  {Keyword: "romantic love songs", Playlist: "love songs"},
	mood.Workout:   {Keyword: "workout gym motivation", Playlist: "workout motivation"},
	mood.Tired:     {Keyword: "sleep calm ambient", Playlist: "sleep"},
}

// PhrasesFor returns the search phrases for a mood, using chill for unknown moods.
func PhrasesFor(t mood.Tag) Phrases {
	if p, ok := phrases[t]; ok {
		return p
	}
	return phrases[mood.Chill]
}
