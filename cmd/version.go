package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set at build time via -ldflags
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mpt version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mpt %s\n", version)
	},
}
