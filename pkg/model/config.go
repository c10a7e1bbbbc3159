// Package model describes quantized network geometry and the byte
// layout of the parameter blob the host uploads.
package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind is the layer kind.
type Kind string

// Supported layer kinds.
const (
	Dense  Kind = "dense"
	Conv2D Kind = "conv2d"
)

// Config is the on-disk model description.
type Config struct {
	Name   string        `yaml:"name"`
	Input  InputConfig   `yaml:"input"`
	Layers []LayerConfig `yaml:"layers"`
}

// InputConfig is the input image plane.
type InputConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LayerConfig describes one layer.
type LayerConfig struct {
	Kind    Kind `yaml:"kind"`
	Units   int  `yaml:"units,omitempty"`   // dense output units
	Filters int  `yaml:"filters,omitempty"` // conv2d filter count
	Kernel  int  `yaml:"kernel,omitempty"`  // conv2d square kernel size

	// Post-accumulation quantization: arithmetic right shift, optional
	// ReLU, optional saturation range applied after the shift.
	Shift uint      `yaml:"shift,omitempty"`
	ReLU  bool      `yaml:"relu,omitempty"`
	Clamp *[2]int32 `yaml:"clamp,omitempty,flow"`
}

// Load reads a model config from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
