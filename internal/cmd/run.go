package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TechnicallyShaun/audiolink/internal/pipeline"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one discovery-and-linking pass",
		Long: `Run a single pass over the vault: discover untranscribed media files,
transcribe each one, write the transcript note, and insert a transcript
link into every note embedding the recording.

Exactly one run mutates a vault at a time; if another live process holds
the lock, the run aborts without touching the vault.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := p.Run(ctx); err != nil {
				if errors.Is(err, pipeline.ErrLocked) {
					return fmt.Errorf("vault is locked: %w", err)
				}
				return err
			}
			return nil
		},
	}
}
