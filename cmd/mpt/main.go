package main

import (
	"os"

	"github.com/macrolang/mpt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
