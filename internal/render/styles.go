package render

import (
	"os"
	"strings"
)

// Standard glamour styles accepted by name.
const (
	StyleDark    = "dark"
	StyleLight   = "light"
	StyleDracula = "dracula"
	StyleTokyo   = "tokyo-night"
	StylePink    = "pink"
	StyleASCII   = "ascii"
	StyleNoTTY   = "notty"
)

// StyleInfo describes a markdown style for `config show`.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles lists the styles that need no style file.
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark terminals (default)"},
		{Name: StyleLight, Description: "Light terminals"},
		{Name: StyleDracula, Description: "Dracula colors"},
		{Name: StyleTokyo, Description: "Tokyo Night colors"},
		{Name: StylePink, Description: "Pink accents"},
		{Name: StyleASCII, Description: "ASCII-only output"},
		{Name: StyleNoTTY, Description: "Plain text for pipes and files"},
	}
}

// IsStandardStyle reports whether name is one of AvailableStyles.
func IsStandardStyle(name string) bool {
	for _, s := range AvailableStyles() {
		if s.Name == name {
			return true
		}
	}
	return false
}

// IsStylePath reports whether style refers to a JSON style file on disk.
func IsStylePath(style string) bool {
	if IsStandardStyle(style) || !strings.HasSuffix(style, ".json") {
		return false
	}
	info, err := os.Stat(style)
	return err == nil && !info.IsDir()
}

// resolveStyle falls back to the dark style for unknown names.
func resolveStyle(style string) string {
	switch {
	case style == "":
		return StyleDark
	case IsStandardStyle(style), IsStylePath(style):
		return style
	default:
		return StyleDark
	}
}
