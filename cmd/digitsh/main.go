package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/tinybrain/digitctl/pkg/host"
	"github.com/tinybrain/digitctl/pkg/model"
	"github.com/tinybrain/digitctl/pkg/transport"
)

var (
	modelPreset = flag.String("model", "regression", "built-in model preset: "+strings.Join(model.PresetNames(), ", "))
	modelFile   = flag.String("model-config", "", "YAML model config file, overrides -model")
	pacingMs    = flag.Int("pacing", 5, "delay between upload chunks in milliseconds")
)

const shellKey = "$shell"

// Shell is the interactive host console.
type Shell struct {
	Net    *model.Net
	Client *host.Client

	conn io.Closer
	sh   *ishell.Shell
}

func shellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func mustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if shellFrom(c).Client == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

func (s *Shell) connect(c *ishell.Context, rw io.ReadWriter, closer io.Closer, prompt string) {
	s.disconnect()
	s.Client = host.NewClient(rw)
	s.Client.Pacing = time.Duration(*pacingMs) * time.Millisecond
	s.conn = closer
	s.sh.SetPrompt("[" + prompt + "] > ")
	c.Println("connected")
}

func (s *Shell) disconnect() {
	if s.conn != nil {
		s.conn.Close()
	}
	s.Client, s.conn = nil, nil
	s.sh.SetPrompt("[none] > ")
}

var commands = []*ishell.Cmd{
	{
		Name: "connect",
		Help: "connect serial PORT [BAUD] | connect tcp HOST:PORT",
		Func: func(c *ishell.Context) {
			s := shellFrom(c)
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("usage: connect serial PORT [BAUD] | connect tcp HOST:PORT"))
				return
			}
			switch c.Args[0] {
			case "serial":
				baud := 115200
				if len(c.Args) > 2 {
					var err error
					if baud, err = strconv.Atoi(c.Args[2]); err != nil {
						c.Err(err)
						return
					}
				}
				port, err := transport.OpenSerial(c.Args[1], baud)
				if err != nil {
					c.Err(err)
					return
				}
				s.connect(c, port, port, c.Args[1])
			case "tcp":
				conn, err := net.Dial("tcp", c.Args[1])
				if err != nil {
					c.Err(err)
					return
				}
				s.connect(c, conn, conn, c.Args[1])
			default:
				c.Err(fmt.Errorf("unknown transport %q", c.Args[0]))
			}
		},
	},
	{
		Name: "disconnect",
		Help: "close the device connection",
		Func: func(c *ishell.Context) {
			shellFrom(c).disconnect()
		},
	},
	{
		Name: "load",
		Help: "load BLOB.bin - upload a parameter blob",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: load BLOB.bin"))
				return
			}
			blob, err := os.ReadFile(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if len(blob) != s.Net.ParamBytes() {
				c.Err(fmt.Errorf("blob is %d bytes, model %s wants %d", len(blob), s.Net.Name, s.Net.ParamBytes()))
				return
			}
			if err := s.Client.UploadParams(blob); err != nil {
				c.Err(err)
				return
			}
			c.Printf("uploaded %d parameter bytes\n", len(blob))
		}),
	},
	{
		Name: "image",
		Help: "image PIXELS.bin - upload a preprocessed image",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: image PIXELS.bin"))
				return
			}
			pixels, err := os.ReadFile(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if len(pixels) != s.Net.Pixels() {
				c.Err(fmt.Errorf("image is %d bytes, model %s wants %d", len(pixels), s.Net.Name, s.Net.Pixels()))
				return
			}
			if err := s.Client.UploadImage(pixels); err != nil {
				c.Err(err)
				return
			}
			c.Printf("uploaded %d pixels\n", len(pixels))
		}),
	},
	{
		Name: "predict",
		Help: "read the predicted digit",
		Func: mustBeConnected(func(c *ishell.Context) {
			class, err := shellFrom(c).Client.ReadPrediction()
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("predicted digit: %d\n", class)
		}),
	},
	{
		Name: "scores",
		Help: "read all class scores",
		Func: mustBeConnected(func(c *ishell.Context) {
			s := shellFrom(c)
			scores, err := s.Client.ReadScores(s.Net.Classes())
			if err != nil {
				c.Err(err)
				return
			}
			for i, score := range scores {
				c.Printf("class %d: %d\n", i, score)
			}
		}),
	},
}

func main() {
	flag.Parse()

	cfg, err := loadModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	net, err := model.Compile(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s := &Shell{Net: net, sh: ishell.New()}
	s.sh.Set(shellKey, s)
	s.sh.SetPrompt("[none] > ")
	s.sh.Println("digitctl host console, model:", net.Name)
	for _, cmd := range commands {
		s.sh.AddCmd(cmd)
	}
	s.sh.Run()
	s.disconnect()
}

func loadModel() (*model.Config, error) {
	if *modelFile != "" {
		return model.Load(*modelFile)
	}
	return model.Preset(*modelPreset)
}
