package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	got := renderTable([]string{"Name", "Frames"}, [][]string{{"intro"}}, []text.Align{text.AlignLeft, text.AlignRight})
	if !strings.Contains(got, "intro") || !strings.HasSuffix(got, "\n") {
		t.Fatalf("unexpected table:\n%s", got)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty table for no headers")
	}
}

func TestCaptureProgressNilSafe(t *testing.T) {
	var p *captureProgress
	if p.Func() != nil {
		t.Fatal("expected nil progress func from nil reporter")
	}
	p.Finish()

	p = newCaptureProgress(io.Discard, "capturing")
	fn := p.Func()
	for i := 1; i <= 3; i++ {
		fn(i, 3)
	}
	p.Finish()
}
