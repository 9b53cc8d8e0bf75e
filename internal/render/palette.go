package render

import "github.com/charmbracelet/lipgloss"

// Palette is the color scheme of the chat panel.
type Palette struct {
	Name string

	Border    lipgloss.Color
	User      lipgloss.Color
	Assistant lipgloss.Color
	Accent    lipgloss.Color

	// Destructive colors failure toasts and field errors.
	Destructive lipgloss.Color
	Online      lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

var (
	TokyoNight = Palette{
		Name:        "tokyonight",
		Border:      lipgloss.Color("#414868"),
		User:        lipgloss.Color("#7aa2f7"),
		Assistant:   lipgloss.Color("#bb9af7"),
		Accent:      lipgloss.Color("#7dcfff"),
		Destructive: lipgloss.Color("#f7768e"),
		Online:      lipgloss.Color("#9ece6a"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
	}

	Catppuccin = Palette{
		Name:        "catppuccin",
		Border:      lipgloss.Color("#45475a"),
		User:        lipgloss.Color("#89b4fa"),
		Assistant:   lipgloss.Color("#cba6f7"),
		Accent:      lipgloss.Color("#94e2d5"),
		Destructive: lipgloss.Color("#f38ba8"),
		Online:      lipgloss.Color("#a6e3a1"),
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
	}

	Nord = Palette{
		Name:        "nord",
		Border:      lipgloss.Color("#4c566a"),
		User:        lipgloss.Color("#88c0d0"),
		Assistant:   lipgloss.Color("#b48ead"),
		Accent:      lipgloss.Color("#8fbcbb"),
		Destructive: lipgloss.Color("#bf616a"),
		Online:      lipgloss.Color("#a3be8c"),
		Text:        lipgloss.Color("#eceff4"),
		TextDim:     lipgloss.Color("#7b88a1"),
	}

	Dracula = Palette{
		Name:        "dracula",
		Border:      lipgloss.Color("#6272a4"),
		User:        lipgloss.Color("#8be9fd"),
		Assistant:   lipgloss.Color("#ff79c6"),
		Accent:      lipgloss.Color("#bd93f9"),
		Destructive: lipgloss.Color("#ff5555"),
		Online:      lipgloss.Color("#50fa7b"),
		Text:        lipgloss.Color("#f8f8f2"),
		TextDim:     lipgloss.Color("#6272a4"),
	}
)

// Palettes returns every built-in palette, default first.
func Palettes() []Palette {
	return []Palette{TokyoNight, Catppuccin, Nord, Dracula}
}

// PaletteByName looks up a palette. Unknown names return TokyoNight and false.
func PaletteByName(name string) (Palette, bool) {
	for _, p := range Palettes() {
		if p.Name == name {
			return p, true
		}
	}
	return TokyoNight, false
}

// PaletteNames returns the palette names in display order.
func PaletteNames() []string {
	palettes := Palettes()
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}
