package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"mcmovie/internal/flipbook"
	"mcmovie/internal/framesample"
	"mcmovie/internal/logging"
	"mcmovie/internal/services"
	"mcmovie/internal/spritesheet"
)

// Options controls frame geometry, sampling, and the playback policy.
type Options struct {
	Loop              bool
	FrameRate         float64
	FrameWidth        int
	FrameHeight       int
	CaptureCapSeconds float64
	HoldSeconds       float64
	Progress          framesample.ProgressFunc
	Logger            *slog.Logger
}

// Result holds the artifacts of a successful run.
type Result struct {
	Sheet             *spritesheet.Sheet
	Descriptor        flipbook.Descriptor
	FrameCount        int
	SourceDuration    float64
	EffectiveDuration float64
}

// EffectiveDuration returns the portion of the video that is captured.
// Looping playback uses the whole video; otherwise capture stops at the cap.
func EffectiveDuration(duration, captureCap float64, loop bool) float64 {
	if loop {
		return duration
	}
	return math.Min(duration, captureCap)
}

// FrameCount returns floor(effective * frameRate).
func FrameCount(effective, frameRate float64) int {
	return int(math.Floor(effective * frameRate))
}

// Plan computes the effective duration and frame count for a source of the
// given duration. A frame count below one reports services.ErrInvalidFrameCount;
// a sheet too large to allocate reports services.ErrEncodingFailure.
func Plan(duration float64, opts Options) (float64, int, error) {
	if !(opts.FrameRate > 0) {
		return 0, 0, services.Wrap(services.ErrConfiguration, "planning", "frame count", fmt.Sprintf("frame rate %v", opts.FrameRate), nil)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0, 0, services.Wrap(services.ErrSourceUnavailable, "planning", "frame count", "duration unknown", nil)
	}
	effective := EffectiveDuration(duration, opts.CaptureCapSeconds, opts.Loop)
	count := FrameCount(effective, opts.FrameRate)
	if count < 1 {
		return effective, count, services.Wrap(services.ErrInvalidFrameCount, "planning", "frame count",
			fmt.Sprintf("%.3fs at %v fps yields no frames", effective, opts.FrameRate), nil)
	}
	if opts.FrameWidth > 0 && opts.FrameHeight > 0 {
		if err := spritesheet.CheckSize(opts.FrameWidth, opts.FrameHeight, count); err != nil {
			return effective, count, err
		}
	}
	return effective, count, nil
}

// Run executes the pipeline against src.
func Run(ctx context.Context, src framesample.Source, opts Options) (*Result, error) {
	if src == nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "planning", "run", "no video source", nil)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "pipeline"))

	duration := src.Duration()
	effective, count, err := Plan(duration, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("capture planned",
		logging.Float64("duration_seconds", duration),
		logging.Float64("effective_seconds", effective),
		logging.Int(logging.FieldFrameCount, count),
		logging.Bool("loop", opts.Loop),
	)

	descriptor, err := flipbook.Build(flipbook.Params{
		FrameCount:  count,
		FrameWidth:  opts.FrameWidth,
		FrameHeight: opts.FrameHeight,
		FrameRate:   opts.FrameRate,
		Loop:        opts.Loop,
		HoldSeconds: opts.HoldSeconds,
	})
	if err != nil {
		return nil, err
	}

	sheet, err := spritesheet.New(opts.FrameWidth, opts.FrameHeight, count)
	if err != nil {
		return nil, err
	}
	sampleCtx := services.WithStage(ctx, "sampling")
	err = framesample.Each(sampleCtx, src, count, opts.FrameRate, func(frame framesample.Frame) error {
		return sheet.Place(frame.Index, frame.Image)
	}, framesample.WithProgress(opts.Progress), framesample.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	if !opts.Loop {
		if err := sheet.BlackenLast(); err != nil {
			return nil, err
		}
	}

	bounds := sheet.Bounds()
	logger.Info("sprite sheet composed",
		logging.Int("sheet_width", bounds.Dx()),
		logging.Int("sheet_height", bounds.Dy()),
		logging.Int(logging.FieldFrameCount, count),
	)

	return &Result{
		Sheet:             sheet,
		Descriptor:        descriptor,
		FrameCount:        count,
		SourceDuration:    duration,
		EffectiveDuration: effective,
	}, nil
}
