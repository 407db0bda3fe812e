package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zvakanaka/orcaslicer-web/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid configuration", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Cannot render configuration", err)
	}
	fmt.Print(string(out))
	return nil
}
