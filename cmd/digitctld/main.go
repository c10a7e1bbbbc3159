package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"
	"io"
	"strings"

	"github.com/golang/glog"

	"github.com/tinybrain/digitctl/pkg/device"
	"github.com/tinybrain/digitctl/pkg/model"
	"github.com/tinybrain/digitctl/pkg/runtime"
	"github.com/tinybrain/digitctl/pkg/telemetry"
	"github.com/tinybrain/digitctl/pkg/transport"
)

var (
	modelPreset = flag.String("model", "regression", "built-in model preset: "+strings.Join(model.PresetNames(), ", "))
	modelFile   = flag.String("model-config", "", "YAML model config file, overrides -model")

	serialAddr = flag.String("serial", "", "serial port address, e.g. /dev/ttyUSB0")
	serialBaud = flag.Int("baud", 115200, "serial baud rate")
	tcpAddr    = flag.String("listen-tcp", "", "TCP listen address, e.g. :7070")
	wsAddr     = flag.String("listen-ws", "", "WebSocket listen address, e.g. :7071")
	wsPath     = flag.String("ws-path", "/stream", "WebSocket endpoint path")

	brokerURL = flag.String("telemetry", "", "MQTT broker URL for classification events, e.g. mqtt://host:1883/digitctl")
)

func main() {
	flag.Parse()

	cfg, err := loadModel()
	if err != nil {
		glog.Exit(err)
	}
	net, err := model.Compile(cfg)
	if err != nil {
		glog.Exit(err)
	}
	glog.Infof("model %s: %d parameter bytes, %d pixels, %d classes",
		net.Name, net.ParamBytes(), net.Pixels(), net.Classes())

	ctl := device.New(net)
	if *brokerURL != "" {
		pub, err := telemetry.Connect(*brokerURL, net.Name)
		if err != nil {
			glog.Exit(err)
		}
		defer pub.Close()
		ctl.Observer = pub
	}

	endpoint, err := selectEndpoint(ctl)
	if err != nil {
		glog.Exit(err)
	}

	runner := runtime.NewRunner().HandleSignals()
	runner.Go(endpoint)
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

func loadModel() (*model.Config, error) {
	if *modelFile != "" {
		return model.Load(*modelFile)
	}
	return model.Preset(*modelPreset)
}

// selectEndpoint picks the single configured transport. The controller
// advances byte by byte and is not safe for concurrent feeding, so
// exactly one transport may be active.
func selectEndpoint(ctl *device.Controller) (runtime.Runnable, error) {
	var endpoints []runtime.Runnable
	if *serialAddr != "" {
		endpoints = append(endpoints, runtime.NamedRun("serial", runtime.RunFunc(func(ctx context.Context) error {
			port, err := transport.OpenSerial(*serialAddr, *serialBaud)
			if err != nil {
				return err
			}
			defer port.Close()
			glog.Infof("serving on serial %s @%d", *serialAddr, *serialBaud)
			return ctl.Serve(ctx, port)
		})))
	}
	if *tcpAddr != "" {
		endpoints = append(endpoints, runtime.NamedRun("tcp", runtime.RunFunc(func(ctx context.Context) error {
			return transport.ServeTCP(ctx, *tcpAddr, func(ctx context.Context, rw io.ReadWriter) error {
				return ctl.Serve(ctx, rw)
			})
		})))
	}
	if *wsAddr != "" {
		endpoints = append(endpoints, runtime.NamedRun("ws", runtime.RunFunc(func(ctx context.Context) error {
			return transport.ServeWebSocket(ctx, *wsAddr, *wsPath, func(ctx context.Context, rw io.ReadWriter) error {
				return ctl.Serve(ctx, rw)
			})
		})))
	}
	if len(endpoints) != 1 {
		return nil, errors.New("configure exactly one of -serial, -listen-tcp, -listen-ws")
	}
	return endpoints[0], nil
}
