package model

// Layer is a compiled layer with resolved shapes and byte offsets.
type Layer struct {
	Kind Kind

	// In and Out are flattened activation counts. For conv2d, Out is
	// Filters*OutW*OutH with filter-major flatten order.
	In  int
	Out int

	// Conv2D geometry (valid padding, stride 1).
	Filters int
	Kernel  int
	InW     int
	InH     int
	OutW    int
	OutH    int

	Shift uint
	ReLU  bool
	Clamp *[2]int32

	// Parameter blob layout: weights first, then biases, per layer in
	// declaration order. Offsets are byte positions in the blob.
	WeightCount int
	BiasCount   int
	WeightOff   int
	BiasOff     int
}

// Net is a compiled model ready for loading and inference.
type Net struct {
	Name   string
	InputW int
	InputH int
	Layers []Layer
}

// Compile validates a config and resolves shapes and the parameter
// byte layout.
func Compile(cfg *Config) (*Net, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	net := &Net{Name: cfg.Name, InputW: cfg.Input.Width, InputH: cfg.Input.Height}
	in := cfg.Input.Width * cfg.Input.Height
	off := 0
	for _, lc := range cfg.Layers {
		l := Layer{
			Kind:  lc.Kind,
			In:    in,
			Shift: lc.Shift,
			ReLU:  lc.ReLU,
			Clamp: lc.Clamp,
		}
		switch lc.Kind {
		case Dense:
			l.Out = lc.Units
			l.WeightCount = lc.Units * in
			l.BiasCount = lc.Units
		case Conv2D:
			l.Filters, l.Kernel = lc.Filters, lc.Kernel
			l.InW, l.InH = cfg.Input.Width, cfg.Input.Height
			l.OutW = l.InW - l.Kernel + 1
			l.OutH = l.InH - l.Kernel + 1
			l.Out = l.Filters * l.OutW * l.OutH
			l.WeightCount = l.Filters * l.Kernel * l.Kernel
			l.BiasCount = l.Filters
		}
		l.WeightOff = off
		off += l.WeightCount
		l.BiasOff = off
		off += 4 * l.BiasCount
		net.Layers = append(net.Layers, l)
		in = l.Out
	}
	return net, nil
}

// Pixels is the image payload byte count.
func (n *Net) Pixels() int {
	return n.InputW * n.InputH
}

// Classes is the output class count.
func (n *Net) Classes() int {
	return n.Layers[len(n.Layers)-1].Out
}

// ParamBytes is the total parameter payload byte count.
func (n *Net) ParamBytes() int {
	last := n.Layers[len(n.Layers)-1]
	return last.BiasOff + 4*last.BiasCount
}
