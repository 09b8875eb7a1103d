package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"restitch.dev/pkg/restitch/internal/domain"
	m "restitch.dev/pkg/restitch/internal/model"
	"restitch.dev/pkg/restitch/internal/plan"
)

var applyDryRunFlag bool
var applyDiffFlag bool

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [plan]",
		Short: "Apply the patch plan to every unit",
		Long:  applyLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := m.Path(viper.GetString(planConfigKey))
			if len(args) == 1 {
				planPath = m.Path(args[0])
			}

			p, err := plan.Load(planPath)
			if err != nil {
				return err
			}

			return workflow.Apply(cmd.Context(), domain.ApplyArgs{
				Plan:     p,
				PlanPath: planPath,
				Reports:  m.Path(viper.GetString(outputFlagName)),
				DryRun:   applyDryRunFlag,
				ShowDiff: applyDiffFlag,
			})
		},
	}

	configureApplyFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func configureApplyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&applyDryRunFlag, "dry-run", "n", false, "report what would change without writing any file")
	cmd.Flags().BoolVar(&applyDiffFlag, "diff", false, "show a unified diff for every changed unit")
}
