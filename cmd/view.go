package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"restitch.dev/pkg/restitch/internal/domain"
	m "restitch.dev/pkg/restitch/internal/model"
)

var viewRunIDFlag string

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View a stored run report",
		Long: `View a stored run report from the reports directory. By default the most
recent run is shown; --run selects an older one by id prefix.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{
				Reports: m.Path(viper.GetString(outputFlagName)),
				RunID:   viewRunIDFlag,
			})
		},
	}

	cmd.Flags().StringVar(&viewRunIDFlag, "run", "", "run id (or prefix) to display instead of the most recent")

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
