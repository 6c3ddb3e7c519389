package render

// Glamour built-in style names
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// StyleInfo describes a markdown style for display purposes.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles returns the glamour styles that need no style file.
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StylePink, Description: "Pink accents"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// IsBuiltinStyle reports whether style is a glamour built-in style name
func IsBuiltinStyle(style string) bool {
	for _, s := range AvailableStyles() {
		if s.Name == style {
			return true
		}
	}
	return false
}

// StyleNames returns just the style names.
func StyleNames() []string {
	styles := AvailableStyles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = s.Name
	}
	return names
}
