// Package cmd provides the root command and CLI setup for restitch.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"restitch.dev/pkg/restitch/internal/adapter"
	"restitch.dev/pkg/restitch/internal/controller"
	"restitch.dev/pkg/restitch/internal/domain"
	m "restitch.dev/pkg/restitch/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var patcher domain.Patcher
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// planFileFlag selects the patch plan file for apply and scan.
var planFileFlag string

// plainFlag forces line-oriented output even on a terminal.
var plainFlag bool

// verboseFlag switches the log file to debug level.
var verboseFlag bool

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewLocalReportStore()
	patcher = domain.NewPatcher()
	workflow = domain.NewWorkflow(fsAdapter, reportStore, ui, patcher)
}

const planHelp = `A patch plan is a YAML file naming the units to rewrite, how a unit key
maps to a file path, the phase table and the ordered rules. Run
"restitch init" to generate a starter plan.`

const rootLongDescription = `Restitch applies plan-driven rewrites to call sites across large sets of
per-unit source files. It extracts the call spans a plan's rules name,
matches each span against the rule shape, rewrites the file in place and
records a report for every run.

` + planHelp

const applyLongDescription = `Apply the patch plan to every unit it lists, in order, and write changed
files back. Files whose content is already in the patched form are left
untouched and reported as already-patched.

` + planHelp

const scanLongDescription = `Run extraction and matching without writing any file, reporting span by
span what an apply would do.

` + planHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restitch",
		Short: "Plan-driven source patcher",
		Long:  rootLongDescription,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			if viper.GetBool(plainConfigKey) {
				ui = controller.NewSimpleUI(cmd)
				workflow = domain.NewWorkflow(fsAdapter, reportStore, ui, patcher)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().
		StringVarP(
			&planFileFlag, planFlagName, "p",
			viper.GetString(planConfigKey),
			"patch plan file",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(planFlagName), planConfigKey)

	cmd.PersistentFlags().BoolVar(&plainFlag, plainFlagName, viper.GetBool(plainConfigKey), "plain line output instead of the interactive view")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(plainFlagName), plainConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "debug logging to the log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
