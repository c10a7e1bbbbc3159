package loader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinybrain/digitctl/pkg/model"
)

func tinyNet(t *testing.T) *model.Net {
	t.Helper()
	net, err := model.Compile(&model.Config{
		Name:  "tiny",
		Input: model.InputConfig{Width: 2, Height: 1},
		Layers: []model.LayerConfig{
			{Kind: model.Dense, Units: 2},
		},
	})
	require.NoError(t, err)
	return net
}

func TestParamLoaderAssembly(t *testing.T) {
	net := tinyNet(t)
	l := NewParamLoader(net)

	// 2x2 weights then two little-endian INT32 biases.
	blob := []byte{
		1, 0xFF, 0x80, 0x7F, // weights 1, -1, -128, 127
		0xE8, 0x03, 0x00, 0x00, // bias 1000
		0x18, 0xFC, 0xFF, 0xFF, // bias -1000
	}
	require.Equal(t, len(blob), net.ParamBytes())

	l.Feed(0, true)
	for i, b := range blob {
		done := l.Feed(b, false)
		require.Equal(t, i == len(blob)-1, done, "byte %d", i)
	}
	require.True(t, l.Ready())

	params := l.Params()
	require.Equal(t, []int8{1, -1, -128, 127}, params.Layers[0].Weights)
	require.Equal(t, []int32{1000, -1000}, params.Layers[0].Biases)
}

func TestParamLoaderOwnsCompletion(t *testing.T) {
	net := tinyNet(t)
	l := NewParamLoader(net)

	l.Feed(0, true)
	for i := 0; i < net.ParamBytes(); i++ {
		l.Feed(byte(i), false)
	}
	require.True(t, l.Ready())
	before := l.Params()

	// Bytes after the total (e.g. the frame's end marker) are ignored.
	require.False(t, l.Feed(0x55, false))
	require.False(t, l.Feed(0xAA, false))
	require.True(t, before == l.Params())
}

func TestParamLoaderSentinelResetsPartial(t *testing.T) {
	net := tinyNet(t)
	l := NewParamLoader(net)

	// Partial frame abandoned, then a full frame from scratch.
	l.Feed(0, true)
	l.Feed(9, false)
	l.Feed(9, false)

	l.Feed(0, true)
	for i := 0; i < net.ParamBytes()-1; i++ {
		require.False(t, l.Feed(1, false))
	}
	require.True(t, l.Feed(1, false))
	require.True(t, l.Ready())
	require.Equal(t, []int8{1, 1, 1, 1}, l.Params().Layers[0].Weights)
}

func TestImageLoaderRenewable(t *testing.T) {
	l := NewImageLoader(3)

	l.Feed(0, true)
	require.Nil(t, l.Feed(1, false))
	require.Nil(t, l.Feed(2, false))
	first := l.Feed(0x80, false)
	require.Equal(t, []int8{1, 2, -128}, first)

	// Next frame overwrites in place; the prior snapshot is untouched.
	l.Feed(0, true)
	require.Nil(t, l.Feed(4, false))
	require.Nil(t, l.Feed(5, false))
	second := l.Feed(6, false)
	require.Equal(t, []int8{4, 5, 6}, second)
	require.Equal(t, []int8{1, 2, -128}, first)
}

func TestImageLoaderPartialThenComplete(t *testing.T) {
	l := NewImageLoader(2)

	l.Feed(0, true)
	require.Nil(t, l.Feed(7, false))

	// Abandoned mid-frame, new frame starts with a sentinel.
	l.Feed(0, true)
	require.Nil(t, l.Feed(3, false))
	require.Equal(t, []int8{3, 4}, l.Feed(4, false))
}
