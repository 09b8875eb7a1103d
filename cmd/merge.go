package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"restitch.dev/pkg/restitch/internal/domain"
	m "restitch.dev/pkg/restitch/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [reports...]",
		Short: "Merge run reports into a single report",
		Long: `Merge the named report files, or every run in the reports directory when
none are given, into one combined run report. Useful after running disjoint
unit lists of the same plan on separate machines.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Merge(cmd.Context(), domain.MergeArgs{
				Reports: m.Path(viper.GetString(outputFlagName)),
				Inputs:  parsePaths(args),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
