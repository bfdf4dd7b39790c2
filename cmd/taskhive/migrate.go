// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool
	var force int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply pending database migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, down, force)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&force, "force", -1, "force migration version without running migrations")

	return cmd
}

func runMigrate(cmd *cobra.Command, down bool, force int) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	switch {
	case force >= 0:
		cmd.Printf("Forcing migration version to %d...\n", force)
		if err := migrator.Force(force); err != nil {
			return err
		}
	case down:
		cmd.Println("Rolling back all migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
	default:
		pending, err := migrator.PendingMigrations()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			cmd.Println("No pending migrations")
			return nil
		}
		cmd.Printf("Applying %d migration(s)...\n", len(pending))
		if err := migrator.Up(); err != nil {
			return err
		}
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		return oops.Code("MIGRATION_DIRTY").Errorf("schema is dirty at version %d, manual intervention required", version)
	}
	cmd.Printf("Schema at version %d\n", version)
	return nil
}
