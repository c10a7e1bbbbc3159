// Package host speaks the device protocol from the host end of the
// byte channel.
package host

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/tinybrain/digitctl/pkg/wire"
)

// BuildParamFrame wraps a parameter blob with the parameter markers.
func BuildParamFrame(blob []byte) []byte {
	frame := make([]byte, 0, len(blob)+4)
	frame = append(frame, wire.ParamStartHi, wire.ParamStartLo)
	frame = append(frame, blob...)
	return append(frame, wire.ParamEndHi, wire.ParamEndLo)
}

// BuildImageFrame wraps raw pixel bytes with the image markers.
func BuildImageFrame(pixels []byte) []byte {
	frame := make([]byte, 0, len(pixels)+4)
	frame = append(frame, wire.ImageStartHi, wire.ImageStartLo)
	frame = append(frame, pixels...)
	return append(frame, wire.ImageEndHi, wire.ImageEndLo)
}

// Client uploads frames and reads back results over a byte channel.
// The sender owns pacing: there is no protocol-level backpressure, so
// uploads are chunked with an optional delay between chunks to let the
// device drain its receive path.
type Client struct {
	ChunkSize int
	Pacing    time.Duration

	// ReadTimeout bounds readback waits on channels that support read
	// deadlines (e.g. TCP). Zero waits indefinitely.
	ReadTimeout time.Duration

	rw io.ReadWriter
}

// NewClient creates a client over the channel.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{ChunkSize: 64, ReadTimeout: 5 * time.Second, rw: rw}
}

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

func (c *Client) armDeadline() {
	if c.ReadTimeout <= 0 {
		return
	}
	if d, ok := c.rw.(readDeadliner); ok {
		d.SetReadDeadline(time.Now().Add(c.ReadTimeout))
	}
}

// UploadParams sends a parameter frame.
func (c *Client) UploadParams(blob []byte) error {
	glog.V(1).Infof("uploading %d parameter bytes", len(blob))
	return c.send(BuildParamFrame(blob))
}

// UploadImage sends an image frame.
func (c *Client) UploadImage(pixels []byte) error {
	glog.V(1).Infof("uploading %d pixel bytes", len(pixels))
	return c.send(BuildImageFrame(pixels))
}

// ReadPrediction requests and reads the predicted class.
func (c *Client) ReadPrediction() (int, error) {
	c.armDeadline()
	if _, err := c.rw.Write([]byte{wire.CmdReadDigit}); err != nil {
		return 0, err
	}
	var b [1]byte
	if _, err := io.ReadFull(c.rw, b[:]); err != nil {
		return 0, err
	}
	return int(b[0] & 0x0F), nil
}

// ReadScores requests and reads all class scores.
func (c *Client) ReadScores(classes int) ([]int32, error) {
	c.armDeadline()
	if _, err := c.rw.Write([]byte{wire.CmdReadScores}); err != nil {
		return nil, err
	}
	scores := make([]int32, classes)
	if err := binary.Read(c.rw, binary.LittleEndian, scores); err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return scores, nil
}

func (c *Client) send(frame []byte) error {
	chunk := c.ChunkSize
	if chunk <= 0 {
		chunk = 64
	}
	for off := 0; off < len(frame); off += chunk {
		end := off + chunk
		if end > len(frame) {
			end = len(frame)
		}
		if _, err := c.rw.Write(frame[off:end]); err != nil {
			return err
		}
		if c.Pacing > 0 {
			time.Sleep(c.Pacing)
		}
	}
	return nil
}
