package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"restitch.dev/pkg/restitch/internal/domain"
	m "restitch.dev/pkg/restitch/internal/model"
	"restitch.dev/pkg/restitch/internal/plan"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [plan]",
		Short: "Preview the plan without writing anything",
		Long:  scanLongDescription,
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

			return workflow.Scan(cmd.Context(), domain.ScanArgs{
				Plan:     p,
				PlanPath: planPath,
				Reports:  m.Path(viper.GetString(outputFlagName)),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
