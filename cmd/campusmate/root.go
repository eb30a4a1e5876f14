package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/campusmate"
	"github.com/aretw0/campusmate/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "campusmate",
	Short: "旦旦学姐: a campus Q&A assistant for Fudan students",
	Long: `campusmate answers campus questions (slang, food, library hours, weather, time,
arithmetic) and remembers what users teach it. It runs as an interactive chat,
an HTTP/WeChat server or an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to campusmate.yaml (default: ./campusmate.yaml or $XDG_CONFIG_HOME/campusmate)")
	rootCmd.PersistentFlags().String("provider", "", "Advisor provider override: anthropic, openai or offline")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override: debug, info, warn or error")
}

// loadConfig reads the config file named by --config, or the default locations, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.Advisor.Provider = p
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}
	return cfg, cfg.Validate()
}

// newApp loads configuration and wires a campusmate.App. Callers must Close it.
func newApp(ctx context.Context, cmd *cobra.Command) (*campusmate.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	app, err := campusmate.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing campusmate: %w", err)
	}
	return app, nil
}
