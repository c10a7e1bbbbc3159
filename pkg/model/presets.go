package model

import (
	"fmt"
	"sort"
)

func clamp(lo, hi int32) *[2]int32 {
	return &[2]int32{lo, hi}
}

// Presets mirror the three deployed model variants.
var presets = map[string]func() *Config{
	// Single-layer softmax regression, raw logits out.
	"regression": func() *Config {
		return &Config{
			Name:  "regression",
			Input: InputConfig{Width: 28, Height: 28},
			Layers: []LayerConfig{
				{Kind: Dense, Units: 10},
			},
		}
	},
	// Two hidden layers with shift-7 quantization and ReLU.
	"mlp": func() *Config {
		return &Config{
			Name:  "mlp",
			Input: InputConfig{Width: 28, Height: 28},
			Layers: []LayerConfig{
				{Kind: Dense, Units: 16, Shift: 7, ReLU: true},
				{Kind: Dense, Units: 16, Shift: 7, ReLU: true},
				{Kind: Dense, Units: 10},
			},
		}
	},
	// One 3x3 conv with saturated 8-bit feature maps, then dense.
	"cnn": func() *Config {
		return &Config{
			Name:  "cnn",
			Input: InputConfig{Width: 28, Height: 28},
			Layers: []LayerConfig{
				{Kind: Conv2D, Filters: 4, Kernel: 3, Shift: 7, ReLU: true, Clamp: clamp(0, 127)},
				{Kind: Dense, Units: 10},
			},
		}
	},
}

// Preset returns a built-in model config by name.
func Preset(name string) (*Config, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown model preset %q", name)
	}
	return fn(), nil
}

// PresetNames lists the built-in model names.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
