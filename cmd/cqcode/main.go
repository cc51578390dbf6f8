package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/cqcode/internal/config"
	"github.com/memohai/cqcode/internal/logger"
)

type rootOptions struct {
	configPath string
	cfg        config.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "cqcode",
		Short:         "Build, parse and prefetch inline chat codes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = os.Getenv("CONFIG_PATH")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			logger.Init(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (toml or yaml); defaults to $CONFIG_PATH or config.toml")

	root.AddCommand(
		newParseCommand(),
		newSegmentsCommand(),
		newEscapeCommand(),
		newUnescapeCommand(),
		newBuildCommand(),
		newPrefetchCommand(opts),
	)
	return root
}
