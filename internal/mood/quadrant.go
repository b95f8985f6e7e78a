package mood

import "fmt"

// QuadrantName names an energy/valence point using a 2x2 grid:
//
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
func QuadrantName(energy, valence float64) string {
	highEnergy := energy > 0.6
	highValence := valence > 0.5

	switch {
	case highEnergy && highValence:
		return "Upbeat Party"
	case highEnergy && !highValence:
		return "Intense & Dark"
	case !highEnergy && highValence:
		return "Chill & Happy"
	default:
		return "Reflective & Melancholy"
	}
}

// Color returns an HSL color for an energy/valence point.
// Energy maps to hue (cool indigo to warm orange); valence lifts saturation and lightness.
func Color(energy, valence float64) string {
	hue := 264 - (energy * 229)
	if hue < 0 {
		hue += 360
	}
	saturation := 60 + (valence * 40)
	lightness := 40 + (valence * 20)
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", hue, saturation, lightness)
}
