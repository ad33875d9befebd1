package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"mcmovie/internal/framesample"
)

// captureProgress draws a terminal progress bar for frame capture. The bar is
// created lazily because the frame count is only known once sampling starts.
type captureProgress struct {
	writer io.Writer
	label  string
	bar    *progressbar.ProgressBar
}

func newCaptureProgress(writer io.Writer, label string) *captureProgress {
	return &captureProgress{writer: writer, label: label}
}

// Func adapts the bar to the sampler's progress callback. A nil receiver
// yields a nil callback so builds run without progress output.
func (p *captureProgress) Func() framesample.ProgressFunc {
	if p == nil {
		return nil
	}
	return p.observe
}

func (p *captureProgress) observe(done, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionSetDescription(p.label),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

// Finish clears the bar once sampling has stopped, successful or not.
func (p *captureProgress) Finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
