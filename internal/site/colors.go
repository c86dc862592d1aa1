package site

import (
	"strings"

	"venture-builder/internal/content"
)

const (
	DefaultPrimary    = "#4F46E5"
	DefaultBackground = "#FFFFFF"
	DefaultText       = "#111827"
)

// Palette is the resolved set of theme colors.
type Palette struct {
	Primary    string
	Background string
	Text       string
}

// ResolvePalette picks, for each theme slot independently, the first entry whose role
// contains the slot keyword (case-insensitive). Unmatched slots keep their defaults.
func ResolvePalette(entries []content.ColorEntry) Palette {
	return Palette{
		Primary:    lookupColor(entries, "primary", DefaultPrimary),
		Background: lookupColor(entries, "background", DefaultBackground),
		Text:       lookupColor(entries, "text", DefaultText),
	}
}

func lookupColor(entries []content.ColorEntry, keyword, fallback string) string {
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Role), keyword) {
			return e.Hex
		}
	}
	return fallback
}
