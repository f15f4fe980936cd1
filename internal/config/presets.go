package config

import "sort"

var Presets = map[string]*Config{
	// classic keeps the older output: four-space JSON and
	// lists rebuilt as "Item N" objects.
	"classic": {
		Export:  ExportConfig{Format: "json", Indent: 4, ArraysAsObjects: true},
		View:    ViewConfig{Theme: "minimal", ExpandDepth: 0},
		Log:     LogConfig{Level: "debug"},
		DataDir: DefaultDataDir,
	},
	"compact": {
		Export:  ExportConfig{Format: "json", Indent: 2},
		View:    ViewConfig{Theme: DefaultTheme, ExpandDepth: 1},
		Log:     LogConfig{Level: "info"},
		DataDir: DefaultDataDir,
	},
	"yaml": {
		Export:  ExportConfig{Format: "yaml", Indent: 2},
		View:    ViewConfig{Theme: "ocean", ExpandDepth: 2},
		Log:     LogConfig{Level: "info"},
		DataDir: DefaultDataDir,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
