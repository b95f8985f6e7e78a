package mood

// AudioProfile is the target audio-feature vector for a mood.
type AudioProfile struct {
	Genres       []string `json:"genres"`
	Energy       float64  `json:"energy"`
	Valence      float64  `json:"valence"`
	Acousticness float64  `json:"acousticness"`
	Danceability float64  `json:"danceability"`
	Tempo        float64  `json:"tempo"`
}

// PrimaryGenre returns the first genre of the profile.
func (p AudioProfile) PrimaryGenre() string {
	if len(p.Genres) == 0 {
		return ""
	}
	return p.Genres[0]
}

var profiles = map[Tag]AudioProfile{
	Happy: {
		Genres:       []string{"pop", "dance", "funk", "disco"},
		Energy:       0.8,
		Valence:      0.9,
		Acousticness: 0.1,
		Danceability: 0.8,
		Tempo:        120,
	},
	Sad: {
		Genres:       []string{"indie", "acoustic", "singer-songwriter", "folk"},
		Energy:       0.3,
		Valence:      0.2,
		Acousticness: 0.7,
		Danceability: 0.3,
		Tempo:        80,
	},
	Energetic: {
		Genres:       []string{"rock", "electronic", "punk", "metal"},
		Energy:       0.95,
		Valence:      0.8,
		Acousticness: 0.1,
		Danceability: 0.7,
		Tempo:        140,
	},
	Chill: {
		Genres:       []string{"ambient", "lo-fi", "indie-pop", "chillout"},
		Energy:       0.4,
		Valence:      0.6,
		Acousticness: 0.5,
		Danceability: 0.4,
		Tempo:        100,
	},
	Stressed: {
		Genres:       []string{"ambient", "new-age", "classical", "meditation"},
		Energy:       0.2,
		Valence:      0.6,
		Acousticness: 0.8,
		Danceability: 0.2,
		Tempo:        70,
	},
	Romantic: {
		Genres:       []string{"r-n-b", "soul", "jazz", "indie-pop"},
		Energy:       0.4,
		Valence:      0.8,
		Acousticness: 0.4,
		Danceability: 0.5,
		Tempo:        90,
	},
	Workout: {
		Genres:       []string{"edm", "hip-hop", "rock", "electronic"},
		Energy:       0.95,
		Valence:      0.8,
		Acousticness: 0.05,
		Danceability: 0.9,
		Tempo:        130,
	},
	Tired: {
		Genres:       []string{"ambient", "classical", "acoustic", "sleep"},
		Energy:       0.15,
		Valence:      0.5,
		Acousticness: 0.9,
		Danceability: 0.1,
		Tempo:        60,
	},
}

// ToAudioProfile returns the audio profile for a mood.
// Unknown moods get the chill profile. The returned genres slice is a copy.
func ToAudioProfile(t Tag) AudioProfile {
	p, ok := profiles[t]
	if !ok {
		p = profiles[Chill]
	}
	p.Genres = append([]string(nil), p.Genres...)
	return p
}
