package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const starterPlan = `version: 1

target:
  # {unit} expands to each unit key below.
  path: states/{unit}/compute.js

units:
  - DE
  - HI

# Line ranges labelling the computation phases of every unit file.
phases:
  - { start: 1, end: 120, label: income }
  - { start: 121, end: 240, label: agi }

rules:
  - name: tag-diagnostics
    mode: tag
    calls: [pushWarning, pushError]
    field: phase
`

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default restitch.yaml and a starter plan",
		Long: `Create a restitch.yaml in the current working directory populated with the
current CLI defaults, plus a starter patch plan to edit.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			return writeStarterPlan(filepath.Join(configFolderPath, defaultPlanFile))
		},
	}
}

// writeStarterPlan writes the template plan unless one already exists.
func writeStarterPlan(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(starterPlan), 0o644); err != nil {
		return fmt.Errorf("failed to write starter plan: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
