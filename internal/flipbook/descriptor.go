package flipbook

import (
	"encoding/json"
	"fmt"

	"mcmovie/internal/services"
)

// AnimType is the engine's identifier for sprite-sheet flip books.
const AnimType = "aseprite_flip_book"

// DefaultHoldSeconds is the duration of the last entry of a non-looping
// animation.
const DefaultHoldSeconds = 3600

// Params describes the sheet the descriptor animates.
type Params struct {
	FrameCount  int
	FrameWidth  int
	FrameHeight int
	FrameRate   float64
	Loop        bool
	// HoldSeconds is the final-entry duration when Loop is false.
	// Zero selects DefaultHoldSeconds.
	HoldSeconds float64
}

// Frame is one entry of the descriptor.
type Frame struct {
	UV       [2]int  `json:"uv"`
	Size     [2]int  `json:"size"`
	Duration float64 `json:"duration"`
}

// Descriptor is the flip-book JSON document. Field order is part of the
// on-disk contract.
type Descriptor struct {
	AnimType  string  `json:"anim_type"`
	FrameSize [2]int  `json:"frame_size"`
	Loop      bool    `json:"loop"`
	Frames    []Frame `json:"frames"`
}

// Build computes the ordered frame entries for p.
func Build(p Params) (Descriptor, error) {
	if p.FrameCount < 1 {
		return Descriptor{}, services.Wrap(services.ErrInvalidFrameCount, "describing", "build", fmt.Sprintf("frame count %d", p.FrameCount), nil)
	}
	if !(p.FrameRate > 0) {
		return Descriptor{}, services.Wrap(services.ErrConfiguration, "describing", "build", fmt.Sprintf("frame rate %v", p.FrameRate), nil)
	}
	hold := p.HoldSeconds
	if hold <= 0 {
		hold = DefaultHoldSeconds
	}

	size := [2]int{p.FrameWidth, p.FrameHeight}
	interval := 1 / p.FrameRate
	frames := make([]Frame, p.FrameCount)
	for i := range frames {
		frames[i] = Frame{
			UV:       [2]int{i * p.FrameWidth, 0},
			Size:     size,
			Duration: interval,
		}
	}
	if !p.Loop {
		frames[len(frames)-1].Duration = hold
	}

	return Descriptor{
		AnimType:  AnimType,
		FrameSize: size,
		Loop:      p.Loop,
		Frames:    frames,
	}, nil
}

// TotalSeconds is the sum of all entry durations.
func (d Descriptor) TotalSeconds() float64 {
	total := 0.0
	for _, f := range d.Frames {
		total += f.Duration
	}
	return total
}

// MarshalIndented renders the descriptor with two-space indentation and a
// trailing newline.
func (d Descriptor) MarshalIndented() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrEncodingFailure, "describing", "marshal", "", err)
	}
	return append(data, '\n'), nil
}
