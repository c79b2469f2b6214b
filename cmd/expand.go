package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/macrolang/mpt"
	"github.com/macrolang/mpt/formatter"
	"github.com/macrolang/mpt/internal/engine"
	"github.com/macrolang/mpt/internal/types"
	"github.com/macrolang/mpt/ruleset"
	"github.com/macrolang/mpt/scanner"
)

// sourceExt is the extension scanned for when a path argument is a directory.
const sourceExt = ".mpt"

var (
	outPath        string
	jsonOutput     bool
	instantFail    bool
	watchMode      bool
	maxExpandDepth int
	cacheDir       string
)

var expandCmd = &cobra.Command{
	Use:   "expand [paths...]",
	Short: "Run the rule set over source files and print the expanded output",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file paths")
			os.Exit(1)
		}

		rules, err := ruleset.Load(rulesFile)
		if err != nil {
			logger.Fatal("Failed to load rule file", zap.String("rules", rulesFile), zap.Error(err))
		}

		factory := func() *engine.Engine {
			eng := engine.New()
			eng.SetMaxDepth(maxExpandDepth)
			ruleset.Register(eng, rules)
			return eng
		}

		paths, err := scanner.ExpandPaths(args, sourceExt)
		if err != nil {
			logger.Fatal("Failed to resolve paths", zap.Error(err))
		}

		if watchMode {
			runWatch(logger, factory, paths)
			return
		}

		var cache *mpt.Cache
		if cacheDir != "" {
			if cache, err = mpt.NewCache(cacheDir, rulesFile); err != nil {
				logger.Fatal("Failed to open cache", zap.String("dir", cacheDir), zap.Error(err))
			}
		}

		results, err := mpt.ProcessFiles(logger, factory, paths, instantFail, cache)
		if err != nil {
			os.Exit(1)
		}

		if printResults(results, jsonOutput, outPath) {
			os.Exit(1)
		}
	},
}

func init() {
	expandCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write expanded output to this file instead of stdout")
	expandCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output diagnostics in JSON format")
	expandCmd.Flags().BoolVar(&instantFail, "instant-fail", false, "Stop at the first recorded error")
	expandCmd.Flags().BoolVar(&watchMode, "watch", false, "Re-expand whenever a source file changes")
	expandCmd.Flags().IntVar(&maxExpandDepth, "max-depth", engine.DefaultMaxDepth, "Expansion recursion limit")
	expandCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache expansion results in this directory")
}

// printResults renders every result and reports whether any carried a
// blocking diagnostic.
func printResults(results []mpt.Result, isJSON bool, outPath string) bool {
	failed := false
	if isJSON {
		errsByFile := make(map[string][]types.CompilationError)
		for _, res := range results {
			errsByFile[res.Filename] = res.Errors
			if res.Failed() {
				failed = true
			}
		}
		d, err := json.Marshal(errsByFile)
		if err != nil {
			logger.Error("Error marshalling diagnostics to JSON", zap.Error(err))
			return true
		}
		fmt.Println(string(d))
		return failed
	}

	for _, res := range results {
		if len(res.Errors) > 0 {
			fmt.Fprint(os.Stderr, formatter.Format(res.Errors, res.Filename, res.Source.Lines))
		}
		if res.Failed() {
			failed = true
			continue
		}
		if err := writeOutput(res.Output, outPath); err != nil {
			logger.Error("Error writing output", zap.Error(err))
			failed = true
		}
	}
	return failed
}

func writeOutput(output, outPath string) error {
	if outPath == "" {
		fmt.Println(output)
		return nil
	}
	return os.WriteFile(outPath, []byte(output), 0o644)
}

func runWatch(logger *zap.Logger, factory mpt.EngineFactory, paths []string) {
	watcher, err := mpt.NewWatcher(logger, factory, instantFail, func(res mpt.Result) {
		printResults([]mpt.Result{res}, jsonOutput, outPath)
	})
	if err != nil {
		logger.Fatal("Failed to create watcher", zap.Error(err))
	}
	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			logger.Fatal("Failed to watch path", zap.String("path", path), zap.Error(err))
		}
	}
	if err := watcher.Start(); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	_ = watcher.Stop()
}
