package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/tablenode/internal/config"
	tnerrors "github.com/vango-dev/tablenode/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tablenode",
		Short: "Keyed reconciliation demo with recycled views",
		Long: `tablenode renders a table of cards from state, diffs each render
against the last one, and applies the resulting ops to recycled views.

Tapping a row's DEL button marks it, waits, then removes it with a fade.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to tablenode.json or tablenode.yaml")

	loadConfig := func() (*config.Config, error) {
		var cfg *config.Config
		var err error
		if configPath == "" && config.Exists(".") {
			cfg, err = config.Load(".")
		} else {
			cfg, err = config.LoadOrDefault(configPath)
		}
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	rootCmd.AddCommand(
		runCmd(loadConfig),
		serveCmd(loadConfig),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		tnerrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(handler), nil
}
