package wire

// Frame marker bytes. The second start-marker byte is forwarded to the
// owning loader as a sentinel preceding real payload bytes.
const (
	ParamStartHi byte = 0xAA
	ParamStartLo byte = 0x55
	ParamEndHi   byte = 0x55
	ParamEndLo   byte = 0xAA

	ImageStartHi byte = 0xBB
	ImageStartLo byte = 0x66
	ImageEndHi   byte = 0x66
	ImageEndLo   byte = 0xBB
)

// Single-byte readback commands, accepted only once parameters are loaded.
const (
	CmdReadDigit  byte = 0xCC
	CmdReadScores byte = 0xCD
)

// OverrunSlack is the number of bytes tolerated past a frame's expected
// payload and end marker before the router abandons the frame. It keeps
// a lost or garbled end marker from wedging the router forever.
const OverrunSlack = 10
