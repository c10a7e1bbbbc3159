package result

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinybrain/digitctl/pkg/wire"
)

func TestStoreUpdateIsolatesCaller(t *testing.T) {
	s := NewStore(2)
	scores := []int32{7, -7}
	s.Update(0, scores)

	scores[0] = 999
	_, got := s.Snapshot()
	require.Equal(t, []int32{7, -7}, got)
}

func TestMuxReadDigit(t *testing.T) {
	s := NewStore(10)
	s.Update(9, make([]int32, 10))
	var buf bytes.Buffer
	m := NewMux(s, &buf)

	require.NoError(t, m.HandleCommand(wire.CmdReadDigit))
	require.Equal(t, []byte{0x09}, buf.Bytes())
}

func TestMuxReadScores(t *testing.T) {
	s := NewStore(2)
	s.Update(0, []int32{7, -7})
	var buf bytes.Buffer
	m := NewMux(s, &buf)

	require.NoError(t, m.HandleCommand(wire.CmdReadScores))
	require.Equal(t, []byte{
		0x07, 0x00, 0x00, 0x00,
		0xF9, 0xFF, 0xFF, 0xFF,
	}, buf.Bytes())
}

func TestMuxBeforeFirstInference(t *testing.T) {
	s := NewStore(3)
	var buf bytes.Buffer
	m := NewMux(s, &buf)

	require.NoError(t, m.HandleCommand(wire.CmdReadDigit))
	require.NoError(t, m.HandleCommand(wire.CmdReadScores))
	require.Equal(t, append([]byte{0x00}, make([]byte, 12)...), buf.Bytes())
}

func TestMuxUnknownCommand(t *testing.T) {
	m := NewMux(NewStore(1), &bytes.Buffer{})
	require.Error(t, m.HandleCommand(0xEE))
}
