package model

import "fmt"

// LayerParams are one layer's loaded weights and biases.
type LayerParams struct {
	Weights []int8
	Biases  []int32
}

// Parameters is a complete loaded parameter set, one entry per layer.
type Parameters struct {
	Layers []LayerParams
}

// EncodeParams flattens a parameter set into the upload blob layout:
// per layer in order, INT8 weights then little-endian INT32 biases.
func (n *Net) EncodeParams(p *Parameters) ([]byte, error) {
	if len(p.Layers) != len(n.Layers) {
		return nil, fmt.Errorf("model %q: %d parameter layers, want %d",
			n.Name, len(p.Layers), len(n.Layers))
	}
	blob := make([]byte, n.ParamBytes())
	for i, l := range n.Layers {
		lp := p.Layers[i]
		if len(lp.Weights) != l.WeightCount || len(lp.Biases) != l.BiasCount {
			return nil, fmt.Errorf("model %q: layer %d: %dx%d parameters, want %dx%d",
				n.Name, i, len(lp.Weights), len(lp.Biases), l.WeightCount, l.BiasCount)
		}
		for j, w := range lp.Weights {
			blob[l.WeightOff+j] = byte(w)
		}
		for j, b := range lp.Biases {
			off := l.BiasOff + 4*j
			blob[off] = byte(b)
			blob[off+1] = byte(b >> 8)
			blob[off+2] = byte(b >> 16)
			blob[off+3] = byte(b >> 24)
		}
	}
	return blob, nil
}

// DecodeParams slices a raw parameter blob into per-layer weights and
// biases following the net's byte layout. Weights are INT8 as-is,
// biases are assembled 4 bytes at a time, little-endian.
func (n *Net) DecodeParams(blob []byte) (*Parameters, error) {
	if len(blob) != n.ParamBytes() {
		return nil, fmt.Errorf("model %q: parameter blob is %d bytes, want %d",
			n.Name, len(blob), n.ParamBytes())
	}
	params := &Parameters{Layers: make([]LayerParams, len(n.Layers))}
	for i, l := range n.Layers {
		lp := &params.Layers[i]
		lp.Weights = make([]int8, l.WeightCount)
		for j := 0; j < l.WeightCount; j++ {
			lp.Weights[j] = int8(blob[l.WeightOff+j])
		}
		lp.Biases = make([]int32, l.BiasCount)
		for j := 0; j < l.BiasCount; j++ {
			off := l.BiasOff + 4*j
			lp.Biases[j] = int32(uint32(blob[off]) |
				uint32(blob[off+1])<<8 |
				uint32(blob[off+2])<<16 |
				uint32(blob[off+3])<<24)
		}
	}
	return params, nil
}
