package mood

import (
	"errors"
	"strings"
)

// ErrInvalidInput is returned when the text to classify is empty or blank.
var ErrInvalidInput = errors.New("text is required")

// Rule maps a set of keywords to a fixed assessment template.
// Confidence in the template is ignored; it always comes from the sentiment signal.
type Rule struct {
	Keywords []string
	Template Assessment
}

// Matches reports whether any keyword occurs in text, ignoring case.
func (r Rule) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// KeywordRules are evaluated in order; the first match wins.
var KeywordRules = []Rule{
	{
		Keywords: []string{"tired", "exhausted", "sleepy"},
		Template: Assessment{Mood: Tired, Energy: 0.2, Valence: 0.3, Description: "You seem tired and need some calming music"},
	},
	{
		Keywords: []string{"excited", "pumped", "energetic"},
		Template: Assessment{Mood: Energetic, Energy: 0.9, Valence: 0.8, Description: "High energy vibes detected!"},
	},
	{
		Keywords: []string{"stressed", "anxious", "overwhelmed"},
		Template: Assessment{Mood: Stressed, Energy: 0.7, Valence: 0.2, Description: "You need some stress-relief music"},
	},
	{
		Keywords: []string{"romantic", "love", "date"},
		Template: Assessment{Mood: Romantic, Energy: 0.4, Valence: 0.8, Description: "Perfect mood for romantic melodies"},
	},
	{
		Keywords: []string{"workout", "gym", "exercise"},
		Template: Assessment{Mood: Workout, Energy: 0.95, Valence: 0.7, Description: "Time to get pumped with workout music!"},
	},
}

// Sentiment label fallbacks, keyed by lower-cased label.
// Some models report numeric labels (label_0..label_2) instead of names.
var labelTemplates = map[string]Assessment{
	"positive": {Mood: Happy, Energy: 0.7, Valence: 0.8, Description: "You're feeling positive! Here's some uplifting music"},
	"label_2":  {Mood: Happy, Energy: 0.7, Valence: 0.8, Description: "You're feeling positive! Here's some uplifting music"},
	"negative": {Mood: Sad, Energy: 0.3, Valence: 0.2, Description: "Detected melancholic mood. Here's some comforting music"},
	"label_0":  {Mood: Sad, Energy: 0.3, Valence: 0.2, Description: "Detected melancholic mood. Here's some comforting music"},
	"neutral":  {Mood: Chill, Energy: 0.5, Valence: 0.6, Description: "Neutral mood detected. Perfect for chill music"},
	"label_1":  {Mood: Chill, Energy: 0.5, Valence: 0.6, Description: "Neutral mood detected. Perfect for chill music"},
}

var unrecognizedLabel = Assessment{Mood: Chill, Energy: 0.5, Valence: 0.6, Description: "Let's find some good music for you"}

// ValidateText returns ErrInvalidInput if text is empty or whitespace only.
// Callers should check before paying for a sentiment call.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Classify derives a mood assessment from text and its sentiment signal.
// Keyword rules take priority over the sentiment label.
func Classify(text string, sentiment SentimentSignal) (Assessment, error) {
	if err := ValidateText(text); err != nil {
		return Assessment{}, err
	}

	a, ok := matchKeywords(text)
	if !ok {
		a = fromLabel(sentiment.Label)
	}
	a.Confidence = sentiment.Score
	return a, nil
}

func matchKeywords(text string) (Assessment, bool) {
	for _, r := range KeywordRules {
		if r.Matches(text) {
			return r.Template, true
		}
	}
	return Assessment{}, false
}

func fromLabel(label string) Assessment {
	if a, ok := labelTemplates[strings.ToLower(label)]; ok {
		return a
	}
	return unrecognizedLabel
}
