package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/macrolang/mpt/formatter"
	"github.com/macrolang/mpt/internal/engine"
	"github.com/macrolang/mpt/ruleset"
)

// checkCmd: mpt check [rulefile]
var checkCmd = &cobra.Command{
	Use:   "check [rulefile]",
	Short: "Validate a rule file without expanding anything",
	Run: func(cmd *cobra.Command, args []string) {
		path := rulesFile
		if len(args) > 0 {
			path = args[0]
		}

		rules, err := ruleset.Load(path)
		if err != nil {
			logger.Fatal("Failed to load rule file", zap.String("rules", path), zap.Error(err))
		}

		eng := engine.New()
		if invalid := ruleset.Register(eng, rules); invalid > 0 {
			fmt.Fprint(os.Stderr, formatter.Format(eng.ConfigErrors(), path, nil))
			fmt.Printf("%d of %d rules invalid\n", invalid, len(rules))
			os.Exit(1)
		}
		fmt.Printf("%d rules ok\n", len(rules))
	},
}
