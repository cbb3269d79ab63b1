package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/config"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string

	// Loaded by the root PersistentPreRunE.
	cfg       = config.Default()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "mmctl",
	Short: "Drive and inspect the boundary-tag heap allocator",
	Long: `mmctl replays malloc-lab style allocation traces against the
allocator, generates random traces, and checks or inspects heap files
produced by the file-backed heap.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
}

// setup loads the config file and initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logCloser, err = logger.Init(logger.Options{
		Enabled: verbose || cfg.Log.Dir != "" || level <= slog.LevelDebug,
		JSON:    cfg.Log.JSON,
		LogDir:  cfg.Log.Dir,
		Writer:  os.Stderr,
		Level:   level,
	})
	if err != nil {
		return err
	}
	logger.Debug("config loaded", "path", configPath, "backing", cfg.Backing, "max_heap", cfg.MaxHeap)
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
