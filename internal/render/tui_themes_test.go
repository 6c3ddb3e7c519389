package render

import "testing"

func TestTUIThemes_RequiredFields(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		if theme.Name == "" {
			t.Errorf("theme has empty name")
		}
		if theme.Description == "" {
			t.Errorf("theme %s has empty description", theme.Name)
		}
		colors := map[string]string{
			"background": string(theme.Background),
			"surface":    string(theme.Surface),
			"border":     string(theme.Border),
			"primary":    string(theme.Primary),
			"secondary":  string(theme.Secondary),
			"accent":     string(theme.Accent),
			"warning":    string(theme.Warning),
			"error":      string(theme.Error),
			"text":       string(theme.Text),
			"text dim":   string(theme.TextDim),
			"text mute":  string(theme.TextMute),
		}
		for field, value := range colors {
			if value == "" {
				t.Errorf("theme %s has empty %s color", theme.Name, field)
			}
		}
		if !IsBuiltinStyle(theme.Markdown) {
			t.Errorf("theme %s uses unknown markdown style %q", theme.Name, theme.Markdown)
		}
	}
}

func TestVariantThemesRegistered(t *testing.T) {
	for _, name := range []string{"trail-green", "classic-amber", "chrono-violet"} {
		theme, ok := GetTUIThemeByName(name)
		if !ok {
			t.Errorf("expected theme %s", name)
			continue
		}
		if theme.Name != name {
			t.Errorf("expected name %s, got %s", name, theme.Name)
		}
	}
}

func TestGetTUIThemeByName_Unknown(t *testing.T) {
	if _, ok := GetTUIThemeByName("nonexistent"); ok {
		t.Error("expected unknown theme to be rejected")
	}
}

func TestSetTUITheme(t *testing.T) {
	original := GetTUITheme()
	defer func() { currentTUITheme = original }()

	if original.Name != "trail-green" {
		t.Errorf("expected default theme trail-green, got %s", original.Name)
	}

	if !SetTUITheme("chrono-violet") {
		t.Fatal("expected SetTUITheme to succeed")
	}
	if GetTUITheme().Name != "chrono-violet" {
		t.Errorf("expected chrono-violet, got %s", GetTUITheme().Name)
	}

	if SetTUITheme("nonexistent") {
		t.Error("expected SetTUITheme to fail for unknown theme")
	}
	if GetTUITheme().Name != "chrono-violet" {
		t.Error("failed SetTUITheme should keep the current theme")
	}
}

func TestTUIThemeNames(t *testing.T) {
	names := TUIThemeNames()
	if len(names) != 7 {
		t.Fatalf("expected 7 themes, got %d", len(names))
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate theme name %s", n)
		}
		seen[n] = true
	}
}
