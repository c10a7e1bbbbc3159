package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompilePresetGeometry(t *testing.T) {
	testCases := []struct {
		name       string
		paramBytes int
		pixels     int
		classes    int
	}{
		{"regression", 10*784 + 4*10, 784, 10},
		{"mlp", 16*784 + 4*16 + 16*16 + 4*16 + 10*16 + 4*10, 784, 10},
		{"cnn", 4*3*3 + 4*4 + 10*2704 + 4*10, 784, 10},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Preset(tc.name)
			require.NoError(t, err)
			net, err := Compile(cfg)
			require.NoError(t, err)
			require.Equal(t, tc.paramBytes, net.ParamBytes())
			require.Equal(t, tc.pixels, net.Pixels())
			require.Equal(t, tc.classes, net.Classes())
		})
	}
}

func TestCompileOffsets(t *testing.T) {
	cfg, err := Preset("mlp")
	require.NoError(t, err)
	net, err := Compile(cfg)
	require.NoError(t, err)

	l1, l2, l3 := net.Layers[0], net.Layers[1], net.Layers[2]
	require.Equal(t, 0, l1.WeightOff)
	require.Equal(t, 16*784, l1.BiasOff)
	require.Equal(t, 16*784+4*16, l2.WeightOff)
	require.Equal(t, 16*784+4*16+16*16, l2.BiasOff)
	require.Equal(t, l2.BiasOff+4*16, l3.WeightOff)
	require.Equal(t, l3.WeightOff+10*16, l3.BiasOff)
	require.Equal(t, 16, l3.In)
	require.Equal(t, 10, l3.Out)
}

func TestCompileConvShapes(t *testing.T) {
	cfg, err := Preset("cnn")
	require.NoError(t, err)
	net, err := Compile(cfg)
	require.NoError(t, err)

	conv := net.Layers[0]
	require.Equal(t, 26, conv.OutW)
	require.Equal(t, 26, conv.OutH)
	require.Equal(t, 4*26*26, conv.Out)
	require.Equal(t, conv.Out, net.Layers[1].In)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"no layers", Config{Name: "x", Input: InputConfig{Width: 4, Height: 4}}, false},
		{"bad input", Config{Name: "x", Layers: []LayerConfig{{Kind: Dense, Units: 2}}}, false},
		{"conv not first", Config{
			Name:  "x",
			Input: InputConfig{Width: 4, Height: 4},
			Layers: []LayerConfig{
				{Kind: Dense, Units: 2},
				{Kind: Conv2D, Filters: 1, Kernel: 3},
			},
		}, false},
		{"kernel too large", Config{
			Name:   "x",
			Input:  InputConfig{Width: 4, Height: 4},
			Layers: []LayerConfig{{Kind: Conv2D, Filters: 1, Kernel: 5}},
		}, false},
		{"unknown kind", Config{
			Name:   "x",
			Input:  InputConfig{Width: 4, Height: 4},
			Layers: []LayerConfig{{Kind: "pool", Units: 2}},
		}, false},
		{"inverted clamp", Config{
			Name:   "x",
			Input:  InputConfig{Width: 4, Height: 4},
			Layers: []LayerConfig{{Kind: Dense, Units: 2, Clamp: clamp(127, 0)}},
		}, false},
		{"ok", Config{
			Name:   "x",
			Input:  InputConfig{Width: 4, Height: 4},
			Layers: []LayerConfig{{Kind: Dense, Units: 2}},
		}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.cfg)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `
name: tiny
input: {width: 4, height: 4}
layers:
  - {kind: dense, units: 8, shift: 7, relu: true}
  - {kind: dense, units: 2}
`
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "tiny", cfg.Name)
	require.Len(t, cfg.Layers, 2)
	require.Equal(t, uint(7), cfg.Layers[0].Shift)
	require.True(t, cfg.Layers[0].ReLU)

	net, err := Compile(cfg)
	require.NoError(t, err)
	require.Equal(t, 8*16+4*8+2*8+4*2, net.ParamBytes())
}
