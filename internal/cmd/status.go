package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechnicallyShaun/audiolink/internal/status"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine statistics from the log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			stats, err := status.ParseLogFile(cfg.LogFile)
			if err != nil {
				return fmt.Errorf("parse log: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transcripts written: %d\n", stats.TranscriptsWritten)
			fmt.Fprintf(out, "Links inserted:      %d\n", stats.LinksInserted)
			fmt.Fprintf(out, "Errors:              %d\n", stats.Errors)
			if stats.LastTranscript != nil {
				fmt.Fprintf(out, "Last transcript:     %s (%s)\n",
					stats.LastTranscript.Output,
					status.FormatTimestamp(stats.LastTranscript.Timestamp),
				)
			}
			return nil
		},
	}
}
