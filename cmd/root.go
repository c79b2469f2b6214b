package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rulesFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "mpt [paths...]",
	Short:            "mpt - a rule-driven text rewriting tool",
	TraverseChildren: true, // Prioritize subcommands
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'mpt' is entered
			_ = cmd.Help()
			return
		}
		// Format: mpt [path1 path2 ...] => behaves like the expand subcommand
		expandCmd.Run(expandCmd, args)
	},
}

// Execute initializes logging and runs the root command.
func Execute() error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rulesFile, "rules", "r", "rules.yaml", "Path to the YAML rule file")

	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}
