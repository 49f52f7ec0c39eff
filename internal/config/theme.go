package config

// Theme holds the colors the CLI uses for zones and chrome
type Theme struct {
	// Preset name ("default" or "monochrome")
	Preset string `yaml:"preset"`

	Confused string `yaml:"confused"`
	Partial  string `yaml:"partial"`
	Clear    string `yaml:"clear"`

	Accent string `yaml:"accent"`
	Subtle string `yaml:"subtle"`
	Done   string `yaml:"done"`
	Error  string `yaml:"error"`
}

// DefaultTheme mirrors the red, yellow, green circles of the board
func DefaultTheme() Theme {
	return Theme{
		Preset:   "default",
		Confused: "#FF5F5F",
		Partial:  "#FFD75F",
		Clear:    "#5FD75F",
		Accent:   "#874BFD",
		Subtle:   "#585858",
		Done:     "#5F87D7",
		Error:    "#FF0000",
	}
}

// MonochromeTheme is for terminals without color
func MonochromeTheme() Theme {
	return Theme{
		Preset:   "monochrome",
		Confused: "#FFFFFF",
		Partial:  "#BCBCBC",
		Clear:    "#808080",
		Accent:   "#FFFFFF",
		Subtle:   "#585858",
		Done:     "#808080",
		Error:    "#FFFFFF",
	}
}

// GetPreset returns a preset theme by name
func GetPreset(name string) Theme {
	if name == "monochrome" {
		return MonochromeTheme()
	}
	return DefaultTheme()
}

// ApplyDefaults fills empty colors from the selected preset
func (t *Theme) ApplyDefaults() {
	preset := GetPreset(t.Preset)
	if t.Preset == "" {
		t.Preset = preset.Preset
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&t.Confused, preset.Confused)
	fill(&t.Partial, preset.Partial)
	fill(&t.Clear, preset.Clear)
	fill(&t.Accent, preset.Accent)
	fill(&t.Subtle, preset.Subtle)
	fill(&t.Done, preset.Done)
	fill(&t.Error, preset.Error)
}

// MergeFrom overrides colors with the non-empty values of other
func (t *Theme) MergeFrom(other Theme) {
	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&t.Preset, other.Preset)
	merge(&t.Confused, other.Confused)
	merge(&t.Partial, other.Partial)
	merge(&t.Clear, other.Clear)
	merge(&t.Accent, other.Accent)
	merge(&t.Subtle, other.Subtle)
	merge(&t.Done, other.Done)
	merge(&t.Error, other.Error)
}
