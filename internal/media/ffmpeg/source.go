package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mcmovie/internal/media/ffprobe"
	"mcmovie/internal/services"
)

const stageName = "decode"

// commandContext is swapped in tests to run a fake ffmpeg.
var commandContext = exec.CommandContext

// inspect is swapped in tests to avoid running ffprobe.
var inspect = ffprobe.Inspect

// Options configures how a video is opened and decoded.
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	Path          string
	FrameWidth    int
	FrameHeight   int
	ProbeTimeout  time.Duration
	ScaleFlags    string
}

// Source is an opened video. It satisfies framesample.Source.
type Source struct {
	path       string
	binary     string
	width      int
	height     int
	scaleFlags string
	duration   float64
	probe      ffprobe.Result
}

// Open verifies the video is readable and determines its duration. A missing
// file, a probe failure or timeout, a container without video, or an unknown
// duration all report services.ErrSourceUnavailable.
func Open(ctx context.Context, opts Options) (*Source, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, services.Wrap(services.ErrSourceUnavailable, stageName, "open", "empty video path", nil)
	}
	if opts.FrameWidth <= 0 || opts.FrameHeight <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open", fmt.Sprintf("frame size %dx%d", opts.FrameWidth, opts.FrameHeight), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, stageName, "open", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrSourceUnavailable, stageName, "open", path+" is a directory", nil)
	}

	probeCtx := ctx
	if opts.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, opts.ProbeTimeout)
		defer cancel()
	}
	result, err := inspect(probeCtx, opts.FFprobeBinary, path)
	if err != nil {
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrSourceUnavailable, stageName, "probe", fmt.Sprintf("timed out after %s", opts.ProbeTimeout), err)
		}
		return nil, services.Wrap(services.ErrSourceUnavailable, stageName, "probe", path, err)
	}
	if result.VideoStreamCount() == 0 {
		return nil, services.Wrap(services.ErrSourceUnavailable, stageName, "probe", "no video stream", nil)
	}
	duration := result.PlayableSeconds()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, services.Wrap(services.ErrSourceUnavailable, stageName, "probe", "duration unknown", nil)
	}

	binary := strings.TrimSpace(opts.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	flags := strings.TrimSpace(opts.ScaleFlags)
	if flags == "" {
		flags = "bicubic"
	}
	return &Source{
		path:       path,
		binary:     binary,
		width:      opts.FrameWidth,
		height:     opts.FrameHeight,
		scaleFlags: flags,
		duration:   duration,
		probe:      result,
	}, nil
}

// Duration reports the playable length in seconds: the container duration,
// clamped to the video stream when the stream ends first.
func (s *Source) Duration() float64 {
	return s.duration
}

// Probe returns the ffprobe result captured by Open.
func (s *Source) Probe() ffprobe.Result {
	return s.probe
}

// FrameAt decodes the frame displayed at offsetSeconds, scaled to the
// configured frame size.
func (s *Source) FrameAt(ctx context.Context, offsetSeconds float64) (image.Image, error) {
	if math.IsNaN(offsetSeconds) || offsetSeconds < 0 || offsetSeconds >= s.duration {
		return nil, services.Wrap(services.ErrSeekFailure, stageName, "seek", fmt.Sprintf("offset %.3fs outside [0, %.3fs)", offsetSeconds, s.duration), nil)
	}

	cmd := commandContext(ctx, s.binary, s.args(offsetSeconds)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrSeekFailure, stageName, "capture", "stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrSeekFailure, stageName, "capture", "start ffmpeg", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	_, readErr := io.ReadFull(stdout, img.Pix)
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if waitErr != nil {
		return nil, services.Wrap(services.ErrSeekFailure, stageName, "capture", fmt.Sprintf("offset %.3fs: %s", offsetSeconds, strings.TrimSpace(stderr.String())), waitErr)
	}
	if readErr != nil {
		return nil, services.Wrap(services.ErrSeekFailure, stageName, "capture", fmt.Sprintf("offset %.3fs produced no frame", offsetSeconds), readErr)
	}
	return img, nil
}

func (s *Source) args(offsetSeconds float64) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-ss", strconv.FormatFloat(offsetSeconds, 'f', 6, 64),
		"-i", s.path,
		"-frames:v", "1",
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d:flags=%s", s.width, s.height, s.scaleFlags),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	}
}
