package config

import "sort"

var Presets = map[string]map[string]*Config{
	"fair": {
		"small": {
			Levels: 5, Balls: 20, ProbRight: 0.5,
		},
		"classic": {
			Levels: 7, Balls: 10, ProbRight: 0.5,
		},
		"tall": {
			Levels: 15, Balls: 200, ProbRight: 0.5, Speed: 4,
		},
		"crowd": {
			Levels: 10, Balls: 500, ProbRight: 0.5, Speed: 8,
		},
	},
	"skewed": {
		"left": {
			Levels: 10, Balls: 100, ProbRight: 0.25, Speed: 2,
		},
		"right": {
			Levels: 10, Balls: 100, ProbRight: 0.75, Speed: 2,
		},
		"slight": {
			Levels: 12, Balls: 150, ProbRight: 0.6, Speed: 3,
		},
	},
	"certain": {
		"left": {
			Levels: 6, Balls: 10, ProbRight: 0,
		},
		"right": {
			Levels: 6, Balls: 10, ProbRight: 1,
		},
	},
}

func GetPreset(shape, preset string) *Config {
	shapePresets, ok := Presets[shape]
	if !ok {
		return nil
	}
	cfg, ok := shapePresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(shape string) []string {
	shapePresets, ok := Presets[shape]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(shapePresets))
	for name := range shapePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListShapes() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
