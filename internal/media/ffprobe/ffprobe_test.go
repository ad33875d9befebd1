package ffprobe

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"testing"
)

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
     "r_frame_rate": "30000/1001", "avg_frame_rate": "0/0", "duration": "4.96"}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "5.000000", "size": "2048"}
}`

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", Width: 640, Height: 360, RFrameRate: "25/1"},
		},
		Format: Format{Duration: "123.45", Size: "1000"},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	video, ok := result.PrimaryVideo()
	if !ok || video.Width != 640 {
		t.Fatalf("unexpected primary video: %+v ok=%v", video, ok)
	}
	if video.FrameRate() != 25 {
		t.Fatalf("unexpected frame rate: %v", video.FrameRate())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "video", Duration: "2.3"}}}
	if result.DurationSeconds() != 2.3 {
		t.Fatalf("expected stream duration fallback, got %v", result.DurationSeconds())
	}
	if (Result{}).DurationSeconds() != 0 {
		t.Fatal("expected 0 duration for empty result")
	}
}

func TestPlayableSecondsClampsToVideoStream(t *testing.T) {
	cases := []struct {
		name   string
		result Result
		want   float64
	}{
		{
			name: "stream ends first",
			result: Result{
				Streams: []Stream{{CodecType: "audio", Duration: "2.5"}, {CodecType: "video", Duration: "2.3"}},
				Format:  Format{Duration: "2.5"},
			},
			want: 2.3,
		},
		{
			name: "stream longer than container",
			result: Result{
				Streams: []Stream{{CodecType: "video", Duration: "3.0"}},
				Format:  Format{Duration: "2.5"},
			},
			want: 2.5,
		},
		{
			name: "stream duration missing",
			result: Result{
				Streams: []Stream{{CodecType: "video"}},
				Format:  Format{Duration: "2.5"},
			},
			want: 2.5,
		},
		{
			name: "stream duration malformed",
			result: Result{
				Streams: []Stream{{CodecType: "video", Duration: "N/A"}},
				Format:  Format{Duration: "2.5"},
			},
			want: 2.5,
		},
		{
			name: "container duration malformed",
			result: Result{
				Streams: []Stream{{CodecType: "video", Duration: "2.3"}},
				Format:  Format{Duration: "N/A"},
			},
			want: 2.3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.result.PlayableSeconds(); got != tc.want {
				t.Fatalf("PlayableSeconds = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestFrameRateParsing(t *testing.T) {
	cases := []struct {
		stream Stream
		want   float64
	}{
		{Stream{RFrameRate: "24/1"}, 24},
		{Stream{RFrameRate: "0/0", AvgFrameRate: "30/1"}, 30},
		{Stream{RFrameRate: "29.97"}, 29.97},
		{Stream{RFrameRate: "x/y"}, 0},
		{Stream{}, 0},
	}
	for _, tc := range cases {
		if got := tc.stream.FrameRate(); got != tc.want {
			t.Fatalf("FrameRate(%+v) = %v, want %v", tc.stream, got, tc.want)
		}
	}
}

func TestInspectParsesOutput(t *testing.T) {
	withFakeProbe(t, "ok")
	result, err := Inspect(context.Background(), "ffprobe", "clip.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.DurationSeconds() != 5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	video, ok := result.PrimaryVideo()
	if !ok || video.Height != 1080 {
		t.Fatalf("unexpected video stream: %+v", video)
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw json to be retained")
	}
}

func TestInspectReportsFailure(t *testing.T) {
	withFakeProbe(t, "fail")
	if _, err := Inspect(context.Background(), "ffprobe", "missing.mp4"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func withFakeProbe(t *testing.T, mode string) {
	t.Helper()
	orig := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FAKE_FFPROBE_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = orig })
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FAKE_FFPROBE_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "No such file or directory")
		os.Exit(1)
	default:
		fmt.Fprint(os.Stdout, sampleProbe)
	}
	os.Exit(0)
}
