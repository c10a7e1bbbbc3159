// Package infer executes the quantized forward pass over loaded
// parameters and an image buffer.
package infer

import (
	"errors"

	"github.com/golang/glog"

	"github.com/tinybrain/digitctl/pkg/model"
)

// Status is the engine run state.
type Status int

// Engine states.
const (
	Idle Status = iota
	Running
)

// ErrBusy is returned when Start is called while a pass is running.
// The auto-trigger is edge sensitive, so hitting this is a programming
// error, not a runtime fault.
var ErrBusy = errors.New("inference already running")

// ErrNoParams is returned when Start is called before parameters load.
var ErrNoParams = errors.New("parameters not loaded")

// Result is one completed classification.
type Result struct {
	Class  int
	Scores []int32
}

// Engine runs one classification at a time as a stepped state machine:
// each Step finalizes one output unit of the current layer. All
// arithmetic is 32-bit signed with two's-complement wraparound, and
// each dot product accumulates in increasing input-index order, so
// results are bit-identical across runs.
type Engine struct {
	net    *model.Net
	params *model.Parameters

	status Status
	layer  int
	unit   int
	in     []int32
	out    []int32

	maxScore int32
	maxClass int
}

// New creates an engine for the compiled net.
func New(net *model.Net) *Engine {
	return &Engine{net: net}
}

// SetParams installs a loaded parameter set.
func (e *Engine) SetParams(p *model.Parameters) {
	e.params = p
}

// Status reports the engine state.
func (e *Engine) Status() Status {
	return e.status
}

// Start begins a pass over the image buffer. The pass then advances
// one output unit per Step call.
func (e *Engine) Start(img []int8) error {
	if e.status != Idle {
		return ErrBusy
	}
	if e.params == nil {
		return ErrNoParams
	}
	e.in = make([]int32, len(img))
	for i, px := range img {
		e.in[i] = int32(px)
	}
	e.out = make([]int32, e.net.Layers[0].Out)
	e.layer, e.unit = 0, 0
	e.maxScore, e.maxClass = 0, 0
	e.status = Running
	return nil
}

// Step finalizes the next output unit. When the pass completes it
// returns the result and the engine is Idle again; otherwise nil.
func (e *Engine) Step() *Result {
	if e.status != Running {
		return nil
	}
	l := &e.net.Layers[e.layer]
	lp := &e.params.Layers[e.layer]

	acc := e.accumulate(l, lp)
	acc += e.bias(l, lp)
	acc = quantize(l, acc)
	e.out[e.unit] = acc

	last := e.layer == len(e.net.Layers)-1
	if last {
		// Strict greater-than: ties resolve to the lowest class index.
		if e.unit == 0 || acc > e.maxScore {
			e.maxScore, e.maxClass = acc, e.unit
		}
	}

	e.unit++
	if e.unit < l.Out {
		return nil
	}
	if !last {
		e.layer++
		e.unit = 0
		e.in, e.out = e.out, make([]int32, e.net.Layers[e.layer].Out)
		return nil
	}

	e.status = Idle
	res := &Result{Class: e.maxClass, Scores: e.out}
	e.in, e.out = nil, nil
	glog.V(2).Infof("inference done: class=%d", res.Class)
	return res
}

// Infer runs a full pass in one call.
func (e *Engine) Infer(img []int8) (*Result, error) {
	if err := e.Start(img); err != nil {
		return nil, err
	}
	for {
		if res := e.Step(); res != nil {
			return res, nil
		}
	}
}

// accumulate computes the current unit's dot product. The accumulator
// is a fresh int32 per unit, so no pipeline state crosses units.
func (e *Engine) accumulate(l *model.Layer, lp *model.LayerParams) int32 {
	var acc int32
	switch l.Kind {
	case model.Dense:
		base := e.unit * l.In
		for i := 0; i < l.In; i++ {
			acc += e.in[i] * int32(lp.Weights[base+i])
		}
	case model.Conv2D:
		cells := l.OutW * l.OutH
		f := e.unit / cells
		r := (e.unit % cells) / l.OutW
		c := e.unit % l.OutW
		base := f * l.Kernel * l.Kernel
		for kr := 0; kr < l.Kernel; kr++ {
			for kc := 0; kc < l.Kernel; kc++ {
				px := e.in[(r+kr)*l.InW+(c+kc)]
				acc += px * int32(lp.Weights[base+kr*l.Kernel+kc])
			}
		}
	}
	return acc
}

func (e *Engine) bias(l *model.Layer, lp *model.LayerParams) int32 {
	if l.Kind == model.Conv2D {
		return lp.Biases[e.unit/(l.OutW*l.OutH)]
	}
	return lp.Biases[e.unit]
}

// quantize applies the layer's post-accumulation rule: arithmetic
// right shift, then ReLU, then saturation. Unconfigured layers pass
// the raw 32-bit value through.
func quantize(l *model.Layer, acc int32) int32 {
	acc >>= l.Shift
	if l.ReLU && acc < 0 {
		acc = 0
	}
	if l.Clamp != nil {
		if acc < l.Clamp[0] {
			acc = l.Clamp[0]
		}
		if acc > l.Clamp[1] {
			acc = l.Clamp[1]
		}
	}
	return acc
}
