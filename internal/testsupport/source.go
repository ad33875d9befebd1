package testsupport

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
)

// FrameColor is the color StubSource paints for the frame at index i.
func FrameColor(i int) color.RGBA {
	return color.RGBA{R: uint8(16 + i%200), G: uint8(64 + (i*7)%150), B: uint8(32 + (i*13)%180), A: 0xff}
}

// SolidFrame returns a width x height image filled with c.
func SolidFrame(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// StubSource is an in-memory video that paints each frame a distinct solid
// color derived from its offset. It records every requested offset.
type StubSource struct {
	Seconds float64
	Width   int
	Height  int
	Rate    float64
	// FailAt makes the capture at this offset index return Err. Negative disables.
	FailAt int
	Err    error

	mu      sync.Mutex
	offsets []float64
}

// NewStubSource returns a source of the given duration whose frame colors are
// keyed by offset*rate.
func NewStubSource(seconds float64, width, height int, rate float64) *StubSource {
	return &StubSource{Seconds: seconds, Width: width, Height: height, Rate: rate, FailAt: -1}
}

// Duration reports the configured length.
func (s *StubSource) Duration() float64 { return s.Seconds }

// FrameAt records offset and returns a solid frame colored for it.
func (s *StubSource) FrameAt(ctx context.Context, offset float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	idx := len(s.offsets)
	s.offsets = append(s.offsets, offset)
	s.mu.Unlock()

	if s.FailAt >= 0 && idx == s.FailAt {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, errors.New("stub capture failed")
	}
	frame := int(offset*s.Rate + 0.5)
	return SolidFrame(s.Width, s.Height, FrameColor(frame)), nil
}

// Offsets returns the capture offsets requested so far.
func (s *StubSource) Offsets() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.offsets...)
}
