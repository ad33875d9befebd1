package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mcmovie/internal/builder"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var name string
	var loop bool
	var outputDir string
	var freshIdentity bool
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "build <video>",
		Short: "Build a .mcpack that plays the video as a flip-book",
		Long: "Build samples the video at the configured frame rate, tiles the frames into a\n" +
			"single sprite sheet, and packages it with a flip-book descriptor, a server form\n" +
			"definition, and a manifest. Without --loop only the first capture window is\n" +
			"kept and playback holds on a black frame.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			store, err := ctx.openRegistry()
			if err != nil {
				return fmt.Errorf("open registry: %w", err)
			}
			defer store.Close()

			b, err := builder.New(cfg, store, logger)
			if err != nil {
				return err
			}

			var progress *captureProgress
			if !noProgress && isTerminal(cmd.ErrOrStderr()) {
				progress = newCaptureProgress(cmd.ErrOrStderr(), "capturing")
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := b.Build(runCtx, builder.Request{
				VideoPath:     args[0],
				Name:          name,
				Loop:          loop,
				OutputDir:     outputDir,
				FreshIdentity: freshIdentity,
				Progress:      progress.Func(),
			})
			progress.Finish()
			if err != nil {
				return err
			}
			printBuildReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Pack name (defaults to the video file name)")
	cmd.Flags().BoolVarP(&loop, "loop", "l", false, "Capture the whole video and loop playback")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the archive (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&freshIdentity, "fresh-identity", false, "Issue new manifest UUIDs instead of bumping the stored version")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the capture progress bar")
	return cmd
}

func printBuildReport(out io.Writer, report *builder.Report) {
	playback := "hold on black"
	if report.Loop {
		playback = "loop"
	}
	identity := "new"
	if report.Reused {
		identity = "reused"
	}
	fmt.Fprintf(out, "Pack:      %s\n", report.Name)
	fmt.Fprintf(out, "Archive:   %s (%s)\n", report.ArchivePath, humanize.Bytes(uint64(max(report.ArchiveBytes, 0))))
	fmt.Fprintf(out, "Frames:    %d (sheet %dx%d)\n", report.FrameCount, report.SheetWidth, report.SheetHeight)
	fmt.Fprintf(out, "Captured:  %.2fs of %.2fs\n", report.EffectiveSeconds, report.SourceSeconds)
	fmt.Fprintf(out, "Playback:  %s\n", playback)
	fmt.Fprintf(out, "Version:   %s (%s identity)\n", report.Identity.Version, identity)
	fmt.Fprintf(out, "Elapsed:   %s\n", report.Elapsed.Round(time.Millisecond))
}
