// Package loader reassembles parameter and image payloads from routed
// frame bytes.
package loader

import (
	"github.com/golang/glog"

	"github.com/tinybrain/digitctl/pkg/model"
)

// ParamLoader consumes the parameter stream into a single logical
// address space spanning all layers' weights and biases. Completion is
// owned by the loader: it declares the set ready exactly when the write
// cursor reaches the configured total, regardless of what the router
// sees, and ignores anything delivered after that.
type ParamLoader struct {
	net    *model.Net
	blob   []byte
	cursor int
	params *model.Parameters
}

// NewParamLoader creates a loader for the net's parameter layout.
func NewParamLoader(net *model.Net) *ParamLoader {
	return &ParamLoader{net: net, blob: make([]byte, net.ParamBytes())}
}

// Feed consumes one routed byte. A sentinel resets the write cursor and
// is discarded. Returns true on the byte that completes the set.
func (l *ParamLoader) Feed(b byte, sentinel bool) bool {
	if sentinel {
		l.cursor = 0
		return false
	}
	if l.Ready() || l.cursor >= len(l.blob) {
		return false
	}
	l.blob[l.cursor] = b
	l.cursor++
	if l.cursor < len(l.blob) {
		return false
	}
	params, err := l.net.DecodeParams(l.blob)
	if err != nil {
		// unreachable: the blob length is the layout total
		glog.Errorf("parameter decode: %v", err)
		l.cursor = 0
		return false
	}
	l.params = params
	glog.V(2).Infof("parameters loaded: %d bytes, %d layers", len(l.blob), len(params.Layers))
	return true
}

// Ready is the parameters-ready level used to gate the router.
func (l *ParamLoader) Ready() bool {
	return l.params != nil
}

// Params returns the loaded set, nil until ready.
func (l *ParamLoader) Params() *model.Parameters {
	return l.params
}
