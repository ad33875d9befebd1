package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mcmovie/internal/pack"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List packs recorded in the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRegistry()
			if err != nil {
				return fmt.Errorf("open registry: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No packs built yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Name,
					entry.Identity.Version.String(),
					strconv.Itoa(entry.FrameCount),
					yesNo(entry.Loop),
					humanize.Bytes(uint64(max(entry.ArchiveBytes, 0))),
					strconv.Itoa(entry.Builds),
					humanize.Time(entry.BuiltAt),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Name", "Version", "Frames", "Loop", "Size", "Builds", "Built"},
				rows,
				[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignLeft},
			))
			return nil
		},
	}

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryForgetCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the stored identity and last build of a pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRegistry()
			if err != nil {
				return fmt.Errorf("open registry: %w", err)
			}
			defer store.Close()

			name := pack.SanitizeName(args[0])
			entry, err := store.Get(cmd.Context(), name)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("no pack named %q in registry", name)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", entry.Name)
			fmt.Fprintf(out, "Version:     %s\n", entry.Identity.Version)
			fmt.Fprintf(out, "Header UUID: %s\n", entry.Identity.HeaderUUID)
			fmt.Fprintf(out, "Module UUID: %s\n", entry.Identity.ModuleUUID)
			fmt.Fprintf(out, "Archive:     %s (%s)\n", entry.ArchivePath, humanize.Bytes(uint64(max(entry.ArchiveBytes, 0))))
			fmt.Fprintf(out, "Source:      %s (%.2fs)\n", entry.SourcePath, entry.SourceSeconds)
			fmt.Fprintf(out, "Frames:      %d\n", entry.FrameCount)
			fmt.Fprintf(out, "Loop:        %s\n", yesNo(entry.Loop))
			fmt.Fprintf(out, "Builds:      %d\n", entry.Builds)
			fmt.Fprintf(out, "Last run:    %s\n", entry.RunID)
			fmt.Fprintf(out, "Built:       %s\n", entry.BuiltAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newHistoryForgetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <name>",
		Short: "Drop a pack's stored identity so the next build starts fresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRegistry()
			if err != nil {
				return fmt.Errorf("open registry: %w", err)
			}
			defer store.Close()

			name := pack.SanitizeName(args[0])
			removed, err := store.Forget(cmd.Context(), name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !removed {
				fmt.Fprintf(out, "No pack named %q in registry\n", name)
				return nil
			}
			fmt.Fprintf(out, "Forgot %s\n", name)
			return nil
		},
	}
}
