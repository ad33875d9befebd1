package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mcmovie/internal/config"
	"mcmovie/internal/media/ffmpeg"
	"mcmovie/internal/pipeline"
	"mcmovie/internal/services"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <video>",
		Short: "Show what a build of the video would capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			src, err := ffmpeg.Open(cmd.Context(), ffmpeg.Options{
				FFmpegBinary:  cfg.Video.FFmpegBinary,
				FFprobeBinary: cfg.Video.FFprobeBinary,
				Path:          args[0],
				FrameWidth:    cfg.Animation.FrameWidth,
				FrameHeight:   cfg.Animation.FrameHeight,
				ProbeTimeout:  cfg.ProbeTimeout(),
				ScaleFlags:    cfg.Video.ScaleFlags,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeRawProbe(out, src.Probe().RawJSON())
			}
			printSourceSummary(out, args[0], src)
			fmt.Fprintln(out)
			rows, err := planRows(cfg, src.Duration())
			if err != nil {
				return err
			}
			fmt.Fprint(out, renderTable(
				[]string{"Mode", "Captured", "Frames", "Sheet"},
				rows,
				[]text.Align{text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw ffprobe JSON instead of the summary")
	return cmd
}

func writeRawProbe(out io.Writer, raw []byte) error {
	if _, err := out.Write(bytes.TrimRight(raw, "\n")); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}

func printSourceSummary(out io.Writer, path string, src *ffmpeg.Source) {
	probe := src.Probe()
	fmt.Fprintf(out, "Source:    %s\n", path)
	if probe.Format.FormatName != "" {
		fmt.Fprintf(out, "Container: %s\n", probe.Format.FormatName)
	}
	if stream, ok := probe.PrimaryVideo(); ok {
		fmt.Fprintf(out, "Video:     %s %dx%d", stream.CodecName, stream.Width, stream.Height)
		if rate := stream.FrameRate(); rate > 0 {
			fmt.Fprintf(out, " @ %s fps", strconv.FormatFloat(rate, 'f', -1, 64))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Duration:  %.3fs\n", src.Duration())
	if size := probe.SizeBytes(); size > 0 {
		fmt.Fprintf(out, "Size:      %s\n", humanize.Bytes(uint64(size)))
	}
}

// planRows reports the capture plan for both playback modes. A mode that
// yields no frames or an oversized sheet is shown rather than treated as an
// error.
func planRows(cfg *config.Config, duration float64) ([][]string, error) {
	anim := cfg.Animation
	modes := []struct {
		label string
		loop  bool
	}{
		{label: "hold", loop: false},
		{label: "loop", loop: true},
	}
	rows := make([][]string, 0, len(modes))
	for _, mode := range modes {
		effective, count, err := pipeline.Plan(duration, pipeline.Options{
			Loop:              mode.loop,
			FrameRate:         anim.FrameRate,
			FrameWidth:        anim.FrameWidth,
			FrameHeight:       anim.FrameHeight,
			CaptureCapSeconds: anim.CaptureCapSeconds,
			HoldSeconds:       anim.HoldSeconds,
		})
		switch {
		case err == nil:
			rows = append(rows, []string{
				mode.label,
				fmt.Sprintf("%.2fs", effective),
				strconv.Itoa(count),
				fmt.Sprintf("%dx%d", count*anim.FrameWidth, anim.FrameHeight),
			})
		case errors.Is(err, services.ErrInvalidFrameCount):
			rows = append(rows, []string{mode.label, fmt.Sprintf("%.2fs", effective), "0", "too short"})
		case errors.Is(err, services.ErrEncodingFailure):
			rows = append(rows, []string{mode.label, fmt.Sprintf("%.2fs", effective), strconv.Itoa(count), "too large"})
		default:
			return nil, err
		}
	}
	return rows, nil
}
