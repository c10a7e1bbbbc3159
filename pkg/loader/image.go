package loader

import "github.com/golang/glog"

// ImageLoader consumes the image stream into a fixed-length pixel
// buffer. It is a renewable one-shot: after completing a buffer it is
// immediately ready for the next image frame.
type ImageLoader struct {
	pixels []int8
	cursor int
}

// NewImageLoader creates a loader for the given pixel count.
func NewImageLoader(pixels int) *ImageLoader {
	return &ImageLoader{pixels: make([]int8, pixels)}
}

// Feed consumes one routed byte. A sentinel resets the write cursor and
// is discarded. On the byte completing the buffer, returns a snapshot
// of the image; otherwise nil. Bytes past the pixel count (the frame's
// end marker as seen by the router) are ignored.
func (l *ImageLoader) Feed(b byte, sentinel bool) []int8 {
	if sentinel {
		l.cursor = 0
		return nil
	}
	if l.cursor >= len(l.pixels) {
		return nil
	}
	l.pixels[l.cursor] = int8(b)
	l.cursor++
	if l.cursor < len(l.pixels) {
		return nil
	}
	l.cursor = 0
	img := make([]int8, len(l.pixels))
	copy(img, l.pixels)
	glog.V(2).Infof("image loaded: %d pixels", len(img))
	return img
}
