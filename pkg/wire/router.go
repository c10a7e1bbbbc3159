package wire

// Channel identifies the logical stream a routed byte belongs to.
type Channel int

const (
	// ChannelNone means the byte was discarded by the router.
	ChannelNone Channel = iota
	// ChannelParam carries parameter payload bytes.
	ChannelParam
	// ChannelImage carries image payload bytes.
	ChannelImage
	// ChannelCommand carries single-byte readback commands.
	ChannelCommand
)

// RouteResult is the outcome of feeding one byte to the router.
type RouteResult struct {
	Channel  Channel
	Byte     byte
	Sentinel bool // second start-marker byte, discard before counting payload
	FrameEnd bool // end marker recognized, frame closed
	Aborted  bool // safety bound hit, partial frame abandoned
}

type routeState int

const (
	stateIdle routeState = iota
	stateParamStart // first parameter marker byte seen
	stateImageStart // first image marker byte seen
	stateParamRecv
	stateImageRecv
)

// Router demultiplexes the incoming byte stream into parameter, image
// and command channels. Frame lengths are fixed by model geometry; the
// router recognizes an end marker only once the expected payload has
// been consumed, so payload bytes equal to marker bytes pass through.
type Router struct {
	// ParamLen and ImageLen are the exact payload byte counts of the
	// two frame kinds, derived from the model configuration.
	ParamLen int
	ImageLen int

	state    routeState
	consumed int
	prev     byte
}

// Reset returns the router to Idle, dropping any partial frame.
func (r *Router) Reset() {
	r.state = stateIdle
}

// Receiving indicates a frame is currently open.
func (r *Router) Receiving() bool {
	return r.state == stateParamRecv || r.state == stateImageRecv
}

// Feed consumes one byte. paramsReady gates frame acceptance: parameter
// frames are only opened before parameters are loaded, image frames and
// commands only after. Bytes with no valid transition are discarded.
func (r *Router) Feed(b byte, paramsReady bool) RouteResult {
	switch r.state {
	case stateIdle:
		switch {
		case b == ParamStartHi && !paramsReady:
			r.state = stateParamStart
		case b == ImageStartHi && paramsReady:
			r.state = stateImageStart
		case (b == CmdReadDigit || b == CmdReadScores) && paramsReady:
			return RouteResult{Channel: ChannelCommand, Byte: b}
		}
	case stateParamStart:
		if b == ParamStartLo {
			return r.open(stateParamRecv, ChannelParam, b)
		}
		r.state = stateIdle
	case stateImageStart:
		if b == ImageStartLo {
			return r.open(stateImageRecv, ChannelImage, b)
		}
		r.state = stateIdle
	case stateParamRecv:
		return r.recv(ChannelParam, b, r.ParamLen, ParamEndHi, ParamEndLo)
	case stateImageRecv:
		return r.recv(ChannelImage, b, r.ImageLen, ImageEndHi, ImageEndLo)
	}
	return RouteResult{}
}

func (r *Router) open(s routeState, ch Channel, b byte) RouteResult {
	r.state = s
	r.consumed = 0
	r.prev = 0
	return RouteResult{Channel: ch, Byte: b, Sentinel: true}
}

func (r *Router) recv(ch Channel, b byte, expect int, endHi, endLo byte) RouteResult {
	r.consumed++
	res := RouteResult{Channel: ch, Byte: b}
	// The pair position check keeps marker-valued payload bytes from
	// terminating the frame early: the earliest the end marker can
	// complete is two bytes past the expected payload.
	if r.consumed >= expect+2 && r.prev == endHi && b == endLo {
		r.state = stateIdle
		res.FrameEnd = true
		return res
	}
	if r.consumed > expect+2+OverrunSlack {
		r.state = stateIdle
		res.Aborted = true
		return res
	}
	r.prev = b
	return res
}
