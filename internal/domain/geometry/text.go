package geometry

import "unicode/utf8"

// averageGlyphWidth is the width of an average glyph relative to the font size.
const averageGlyphWidth = 0.6

// EstimateTextWidth approximates the rendered width of text in pixels.
func EstimateTextWidth(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * averageGlyphWidth
}

// Truncate shortens text to at most maxRunes runes, ending with an ellipsis.
func Truncate(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	r := []rune(text)
	if maxRunes == 1 {
		return "…"
	}
	return string(r[:maxRunes-1]) + "…"
}
