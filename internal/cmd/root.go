// Package cmd wires the audiolink command-line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechnicallyShaun/audiolink/internal/config"
	"github.com/TechnicallyShaun/audiolink/internal/logging"
)

// NewRootCmd creates the root command for the audiolink CLI
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "audiolink",
		Short: "Link audio transcripts into a markdown note vault",
		Long: `Audiolink discovers audio and video recordings in a markdown vault,
transcribes them through a speech-recognition provider, writes templated
transcript notes, and links each transcript into every note embedding the
original recording.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to configuration file (YAML or JSON)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewCreateConfigCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// loadConfig loads and validates the configuration named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the engine logger from configuration.
func newLogger(cfg *config.Config) (*logging.EngineLogger, error) {
	logCfg := logging.Config{
		Console:  cfg.ConsoleLogging,
		MinLevel: logging.ParseLevel(cfg.LogLevel),
	}
	if cfg.FileLogging {
		logCfg.LogFile = cfg.LogFile
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
