// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the TaskHive CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskhive",
		Short: "TaskHive - multi-tenant task management backend",
		Long: `TaskHive is a multi-tenant task management backend with cascading
soft deletes, integrity-checked restores, and retention-based cleanup.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database_url", "", "PostgreSQL connection string (overrides config file)")
	cmd.PersistentFlags().String("log_format", "", "log output format: json or text")

	// Add subcommands
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewReaperCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// loadConfig resolves the effective configuration for a command: defaults,
// then the config file, then any persistent flag overrides. When --config is
// not given, the XDG config location is used if a file exists there.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	if path == "" {
		if candidate := xdg.DefaultConfigFile(); fileExists(candidate) {
			path = candidate
		}
	}
	return config.Load(path, cmd.Root().PersistentFlags())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
