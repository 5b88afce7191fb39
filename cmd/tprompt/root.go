package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/tprompt/internal/config"
	"github.com/andyrewlee/tprompt/internal/history"
	"github.com/andyrewlee/tprompt/internal/logging"
	"github.com/andyrewlee/tprompt/internal/script"
)

type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// ensureConfig migrates the legacy data directory once, then loads the
// config and rewrites it if an older version was upgraded.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		paths, err := config.DefaultPaths()
		if err != nil {
			c.configErr = err
			return
		}
		if _, err := paths.MigrateLegacyHome(); err != nil {
			logging.Warn("legacy migration failed: %v", err)
		}
		cfg, err := config.LoadFrom(paths)
		if err != nil {
			c.configErr = err
			return
		}
		if err := paths.EnsureDirectories(); err != nil {
			c.configErr = fmt.Errorf("create data dirs: %w", err)
			return
		}
		if cfg.Migrated {
			if err := cfg.Save(); err != nil {
				logging.Warn("save migrated config: %v", err)
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) library() (*script.Library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return script.OpenLibrary(cfg.Paths.ScriptsRoot, cfg.Paths.IndexPath)
}

func (c *commandContext) history() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.Paths.HistoryPath)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}
	var flags playFlags

	rootCmd := &cobra.Command{
		Use:           "tprompt [file]",
		Short:         "Terminal teleprompter",
		Long:          "tprompt scrolls a markdown script at a steady reading speed.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, ctx, flags, args)
		},
	}
	flags.register(rootCmd)

	rootCmd.AddCommand(newPlayCommand(ctx))
	rootCmd.AddCommand(newScriptsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "tprompt %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		},
	}
}
