// Package mood derives a mood assessment from free text and maps moods to
// target audio profiles.
package mood

import "strings"

// Tag identifies one of the fixed moods.
type Tag string

// Known mood tags.
const (
	Happy     Tag = "happy"
	Sad       Tag = "sad"
	Energetic Tag = "energetic"
	Chill     Tag = "chill"
	Stressed  Tag = "stressed"
	Romantic  Tag = "romantic"
	Workout   Tag = "workout"
	Tired     Tag = "tired"
)

// Tags lists every known mood in table order.
var Tags = []Tag{Happy, Sad, Energetic, Chill, Stressed, Romantic, Workout, Tired}

// Normalize lower-cases and trims a tag received from outside the process.
func Normalize(s string) Tag {
	return Tag(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether t has an entry in the profile table.
func (t Tag) Known() bool {
	_, ok := profiles[t]
	return ok
}

// SentimentSignal is the primary result of the external sentiment classifier.
type SentimentSignal struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Assessment is the classified mood for one piece of user text.
type Assessment struct {
	Mood        Tag     `json:"mood"`
	Confidence  float64 `json:"confidence"`
	Energy      float64 `json:"energy"`
	Valence     float64 `json:"valence"`
	Description string  `json:"description"`
}

// Track is a catalog track as returned to callers.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	AlbumName   string   `json:"albumName"`
	AlbumArtURL string   `json:"albumArtUrl,omitempty"`
	PreviewURL  string   `json:"previewUrl,omitempty"`
	ExternalURL string   `json:"externalUrl"`
}

// ArtistNames joins the track's artists for display.
func (t Track) ArtistNames() string {
	return strings.Join(t.Artists, ", ")
}
