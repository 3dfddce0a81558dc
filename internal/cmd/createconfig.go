package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TechnicallyShaun/audiolink/internal/config"
)

// NewCreateConfigCmd creates the create-config command
func NewCreateConfigCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "create-config <path>",
		Short: "Write an example configuration file",
		Long: `Write an example configuration file preconfigured for a note-taking
app. The serialization format follows the destination extension
(.yaml, .yml, or .json).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := config.WriteExample(path, kind); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example %s configuration created at %s\n", kind, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "generic",
		fmt.Sprintf("Configuration type (%s)", strings.Join(config.ExampleKinds(), ", ")))

	return cmd
}
