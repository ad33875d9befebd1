package framesample

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"mcmovie/internal/logging"
	"mcmovie/internal/services"
)

const stageName = "sampling"

// Source is a seekable video whose frames can be captured at arbitrary
// offsets. Implementations are owned by the caller and are not mutated.
type Source interface {
	// Duration reports the playable length in seconds.
	Duration() float64
	// FrameAt seeks to offsetSeconds and returns the decoded image there.
	FrameAt(ctx context.Context, offsetSeconds float64) (image.Image, error)
}

// Frame is a single captured still. Frames are immutable once produced.
type Frame struct {
	Index  int
	Offset float64
	Image  image.Image
}

// ProgressFunc observes sampling progress after each captured frame.
type ProgressFunc func(done, total int)

// Option customizes a sampling run.
type Option func(*runOptions)

type runOptions struct {
	progress ProgressFunc
	logger   *slog.Logger
}

// WithProgress registers an observer called after every captured frame.
func WithProgress(fn ProgressFunc) Option {
	return func(o *runOptions) {
		o.progress = fn
	}
}

// WithLogger attaches a logger for per-frame debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = logger
	}
}

// Offset returns the capture time in seconds for the given frame index.
func Offset(index int, frameRate float64) float64 {
	return float64(index) / frameRate
}

// Each captures frameCount frames from src and hands each to fn in index
// order. An error from the source or from fn aborts the run.
func Each(ctx context.Context, src Source, frameCount int, frameRate float64, fn func(Frame) error, opts ...Option) error {
	if src == nil {
		return services.Wrap(services.ErrSourceUnavailable, stageName, "sample", "no video source", nil)
	}
	if frameCount < 1 {
		return services.Wrap(services.ErrInvalidFrameCount, stageName, "sample", fmt.Sprintf("frame count %d", frameCount), nil)
	}
	if !(frameRate > 0) {
		return services.Wrap(services.ErrConfiguration, stageName, "sample", fmt.Sprintf("frame rate %v", frameRate), nil)
	}

	options := runOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	logger := logging.NewComponentLogger(options.logger, "framesample")
	logger = logging.WithContext(services.WithStage(ctx, stageName), logger)
	sampler := logging.NewProgressSampler(10)

	for i := range frameCount {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sample frame %d: %w", i, err)
		}
		offset := Offset(i, frameRate)
		img, err := src.FrameAt(ctx, offset)
		if err != nil {
			return seekError(i, offset, err)
		}
		if img == nil {
			return services.Wrap(services.ErrSeekFailure, stageName, "capture", fmt.Sprintf("no image at %.3fs (frame %d)", offset, i), nil)
		}
		if err := fn(Frame{Index: i, Offset: offset, Image: img}); err != nil {
			return err
		}
		if options.progress != nil {
			options.progress(i+1, frameCount)
		}
		if sampler.ShouldLog(i+1, frameCount) {
			logger.Debug("frame captured",
				logging.Int(logging.FieldFrameIndex, i),
				logging.Int(logging.FieldFrameCount, frameCount),
				logging.Float64("offset_seconds", offset),
			)
		}
	}
	return nil
}

// Sample captures frameCount frames from src and returns them in index order.
func Sample(ctx context.Context, src Source, frameCount int, frameRate float64, opts ...Option) ([]Frame, error) {
	var frames []Frame
	if frameCount > 0 {
		frames = make([]Frame, 0, frameCount)
	}
	err := Each(ctx, src, frameCount, frameRate, func(frame Frame) error {
		frames = append(frames, frame)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return frames, nil
}

func seekError(index int, offset float64, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("sample frame %d: %w", index, err)
	}
	if services.Kind(err) != "unknown" {
		return err
	}
	return services.Wrap(services.ErrSeekFailure, stageName, "seek", fmt.Sprintf("offset %.3fs (frame %d)", offset, index), err)
}
