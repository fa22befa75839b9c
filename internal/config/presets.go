package config

import "math"

var Presets = map[string]map[string]*Config{
	"gauss": {
		"default": {
			Field: "gauss",
			X:     AxisConfig{Min: -3, Max: 3}, Y: AxisConfig{Min: -3, Max: 3},
			MaxIterations: 20, InitialNStep: 2, MaxError: 0.1,
		},
		"tight": {
			Field: "gauss",
			X:     AxisConfig{Min: -3, Max: 3}, Y: AxisConfig{Min: -3, Max: 3},
			MaxIterations: 30, InitialNStep: 3, MaxError: 1e-4,
		},
		"fast": {
			Field: "gauss",
			X:     AxisConfig{Min: -3, Max: 3}, Y: AxisConfig{Min: -3, Max: 3},
			MaxIterations: 20, InitialNStep: 2, MaxError: 0.1, FastDensityIncrease: true,
		},
	},
	"invxy": {
		"log": {
			Field: "invxy",
			X:     AxisConfig{Min: 1, Max: math.E * math.E}, Y: AxisConfig{Min: 1, Max: math.E * math.E},
			MaxIterations: 20, InitialNStep: 2, MaxError: 0.1, InLoge: true,
		},
		"linear": {
			Field: "invxy",
			X:     AxisConfig{Min: 1, Max: math.E * math.E}, Y: AxisConfig{Min: 1, Max: math.E * math.E},
			MaxIterations: 30, InitialNStep: 3, MaxError: 0.1,
		},
	},
	"sinprod": {
		"default": {
			Field: "sinprod",
			X:     AxisConfig{Min: 0, Max: math.Pi}, Y: AxisConfig{Min: 0, Max: math.Pi},
			MaxIterations: 20, InitialNStep: 2, MaxError: 0.01,
		},
	},
	"oscillator": {
		"doomed": {
			Field: "oscillator",
			X:     AxisConfig{Min: 0, Max: 1}, Y: AxisConfig{Min: 0, Max: 1},
			MaxIterations: 3, InitialNStep: 1, MaxError: 1e-8,
		},
		"patient": {
			Field: "oscillator",
			X:     AxisConfig{Min: 0, Max: 1}, Y: AxisConfig{Min: 0, Max: 1},
			MaxIterations: 30, InitialNStep: 4, MaxError: 0.01, FastDensityIncrease: true,
		},
	},
}

func GetPreset(fieldName, preset string) *Config {
	fieldPresets, ok := Presets[fieldName]
	if !ok {
		return nil
	}
	cfg, ok := fieldPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(fieldName string) []string {
	fieldPresets, ok := Presets[fieldName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(fieldPresets))
	for name := range fieldPresets {
		names = append(names, name)
	}
	return names
}
