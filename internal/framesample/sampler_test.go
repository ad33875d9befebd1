package framesample

import (
	"context"
	"errors"
	"image"
	"testing"

	"mcmovie/internal/services"
)

type recordingSource struct {
	duration float64
	offsets  []float64
	inFlight int
	maxSeen  int
	failAt   int
	nilAt    int
}

func (s *recordingSource) Duration() float64 { return s.duration }

func (s *recordingSource) FrameAt(_ context.Context, offset float64) (image.Image, error) {
	s.inFlight++
	defer func() { s.inFlight-- }()
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	idx := len(s.offsets)
	s.offsets = append(s.offsets, offset)
	if s.failAt >= 0 && idx == s.failAt {
		return nil, errors.New("decoder hiccup")
	}
	if s.nilAt >= 0 && idx == s.nilAt {
		return nil, nil
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 2)), nil
}

func newRecordingSource() *recordingSource {
	return &recordingSource{duration: 5, failAt: -1, nilAt: -1}
}

func TestSampleOffsetsAndOrder(t *testing.T) {
	src := newRecordingSource()
	frames, err := Sample(context.Background(), src, 10, 10)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(frames) != 10 {
		t.Fatalf("expected 10 frames, got %d", len(frames))
	}
	for i, frame := range frames {
		if frame.Index != i {
			t.Fatalf("frame %d has index %d", i, frame.Index)
		}
		want := float64(i) / 10
		if frame.Offset != want || src.offsets[i] != want {
			t.Fatalf("frame %d offset %v (seek %v), want %v", i, frame.Offset, src.offsets[i], want)
		}
	}
	if src.maxSeen != 1 {
		t.Fatalf("expected strictly sequential seeks, saw %d concurrent", src.maxSeen)
	}
}

func TestSampleReportsProgress(t *testing.T) {
	var calls [][2]int
	_, err := Sample(context.Background(), newRecordingSource(), 3, 10, WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(calls) != len(want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("progress calls = %v, want %v", calls, want)
		}
	}
}

func TestSampleWrapsSourceErrorAsSeekFailure(t *testing.T) {
	src := newRecordingSource()
	src.failAt = 2
	frames, err := Sample(context.Background(), src, 5, 10)
	if !errors.Is(err, services.ErrSeekFailure) {
		t.Fatalf("expected seek failure, got %v", err)
	}
	if frames != nil {
		t.Fatalf("expected no frames on failure, got %d", len(frames))
	}
	if len(src.offsets) != 3 {
		t.Fatalf("expected sampling to stop at the failing frame, saw %d seeks", len(src.offsets))
	}
}

func TestSampleNilImageIsSeekFailure(t *testing.T) {
	src := newRecordingSource()
	src.nilAt = 0
	if _, err := Sample(context.Background(), src, 2, 10); !errors.Is(err, services.ErrSeekFailure) {
		t.Fatalf("expected seek failure, got %v", err)
	}
}

func TestSamplePreservesMarkedErrors(t *testing.T) {
	marked := services.Wrap(services.ErrSourceUnavailable, "decode", "open", "gone", nil)
	src := sourceFunc(func(context.Context, float64) (image.Image, error) { return nil, marked })
	_, err := Sample(context.Background(), src, 1, 10)
	if !errors.Is(err, services.ErrSourceUnavailable) || errors.Is(err, services.ErrSeekFailure) {
		t.Fatalf("expected original marker to survive, got %v", err)
	}
}

func TestSampleRejectsBadInputs(t *testing.T) {
	if _, err := Sample(context.Background(), nil, 1, 10); !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable for nil source, got %v", err)
	}
	if _, err := Sample(context.Background(), newRecordingSource(), 0, 10); !errors.Is(err, services.ErrInvalidFrameCount) {
		t.Fatalf("expected invalid frame count, got %v", err)
	}
	if _, err := Sample(context.Background(), newRecordingSource(), 1, 0); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for zero rate, got %v", err)
	}
}

func TestEachStopsOnCallbackError(t *testing.T) {
	src := newRecordingSource()
	stop := errors.New("stop")
	err := Each(context.Background(), src, 5, 10, func(f Frame) error {
		if f.Index == 1 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if len(src.offsets) != 2 {
		t.Fatalf("expected 2 seeks, got %d", len(src.offsets))
	}
}

func TestEachHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := newRecordingSource()
	err := Each(ctx, src, 5, 10, func(f Frame) error {
		if f.Index == 0 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(src.offsets) != 1 {
		t.Fatalf("expected no seeks after cancel, got %d", len(src.offsets))
	}
}

type sourceFunc func(context.Context, float64) (image.Image, error)

func (f sourceFunc) Duration() float64 { return 1 }

func (f sourceFunc) FrameAt(ctx context.Context, offset float64) (image.Image, error) {
	return f(ctx, offset)
}
