// Package device wires the channel router, loaders, inference engine
// and readback mux into one byte-driven controller.
package device

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/tinybrain/digitctl/pkg/infer"
	"github.com/tinybrain/digitctl/pkg/loader"
	"github.com/tinybrain/digitctl/pkg/model"
	"github.com/tinybrain/digitctl/pkg/result"
	"github.com/tinybrain/digitctl/pkg/wire"
)

// Observer is notified when a classification completes.
type Observer interface {
	ClassificationDone(class int, scores []int32)
}

// Controller is the on-device state machine. It advances one byte at a
// time: each Feed routes the byte, updates the owning loader, detects
// the image-ready rising edge and runs the triggered inference to
// completion before the next byte is consumed.
type Controller struct {
	// Observer, if set, is called after each completed inference.
	Observer Observer

	net    *model.Net
	router wire.Router
	params *loader.ParamLoader
	image  *loader.ImageLoader
	engine *infer.Engine
	store  *result.Store
	mux    *result.Mux

	out io.Writer

	lastImage  []int8
	imageReady bool
	prevReady  bool
}

// New creates a controller for the net. Readback responses go to the
// writer set with SetOutput; with no output attached they are dropped,
// matching a serial line nobody listens to.
func New(net *model.Net) *Controller {
	c := &Controller{
		net:    net,
		router: wire.Router{ParamLen: net.ParamBytes(), ImageLen: net.Pixels()},
		params: loader.NewParamLoader(net),
		image:  loader.NewImageLoader(net.Pixels()),
		engine: infer.New(net),
		store:  result.NewStore(net.Classes()),
	}
	c.mux = result.NewMux(c.store, outboundWriter{c})
	return c
}

// SetOutput attaches the outbound byte channel.
func (c *Controller) SetOutput(w io.Writer) {
	c.out = w
}

type outboundWriter struct {
	c *Controller
}

func (w outboundWriter) Write(p []byte) (int, error) {
	if w.c.out == nil {
		return len(p), nil
	}
	return w.c.out.Write(p)
}

// Ready reports the parameters-ready level.
func (c *Controller) Ready() bool {
	return c.params.Ready()
}

// Store exposes the result store for readers.
func (c *Controller) Store() *result.Store {
	return c.store
}

// Feed consumes one host byte. This is one discrete step of the whole
// controller: loaders and the auto-trigger edge detector advance in
// lock-step with the router.
func (c *Controller) Feed(b byte) error {
	res := c.router.Feed(b, c.params.Ready())
	switch res.Channel {
	case wire.ChannelParam:
		if c.params.Feed(res.Byte, res.Sentinel) {
			c.engine.SetParams(c.params.Params())
			glog.V(1).Infof("model %s: parameters ready", c.net.Name)
		}
	case wire.ChannelImage:
		if res.Sentinel {
			// A new frame is opening: the ready level drops until the
			// buffer completes again.
			c.imageReady = false
		}
		if img := c.image.Feed(res.Byte, res.Sentinel); img != nil {
			c.lastImage = img
			c.imageReady = true
		}
	case wire.ChannelCommand:
		if err := c.mux.HandleCommand(res.Byte); err != nil {
			return err
		}
	}
	if res.Aborted {
		glog.Warning("frame abandoned: end marker never arrived")
	}
	return c.tick()
}

// tick fires the engine on the rising edge of image-ready, never on
// the level, so a held-high flag cannot re-trigger a run.
func (c *Controller) tick() error {
	rising := c.imageReady && !c.prevReady
	c.prevReady = c.imageReady
	if !rising {
		return nil
	}
	if err := c.engine.Start(c.lastImage); err != nil {
		return err
	}
	var res *infer.Result
	for res == nil {
		res = c.engine.Step()
	}
	c.store.Update(res.Class, res.Scores)
	glog.V(1).Infof("model %s: predicted class %d", c.net.Name, res.Class)
	if c.Observer != nil {
		c.Observer.ClassificationDone(res.Class, res.Scores)
	}
	return nil
}

// Serve drives the controller from an inbound byte stream until the
// context is canceled or the stream ends. If the stream is also a
// writer it becomes the outbound channel for readback responses.
func (c *Controller) Serve(ctx context.Context, r io.Reader) error {
	if w, ok := r.(io.Writer); ok {
		c.SetOutput(w)
	}
	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readLoop(subCtx, r, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			if err := c.Feed(b); err != nil {
				return err
			}
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func readLoop(ctx context.Context, r io.Reader, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if _, err := r.Read(buf); err != nil {
				errCh <- err
				return
			}
			byteCh <- buf[0]
		}
	}
}
