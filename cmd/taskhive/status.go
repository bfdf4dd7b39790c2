// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/workspace"
	"github.com/taskhive/taskhive/internal/workspace/postgres"
)

// Status holds the output of the status command.
type Status struct {
	SchemaVersion  uint             `json:"schema_version"`
	SchemaDirty    bool             `json:"schema_dirty"`
	DeletedRecords map[string]int64 `json:"deleted_records"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// newStatusCmd creates the status subcommand with all flags configured.
func newStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show schema version and soft-deleted record counts",
		Long: `Show the current migration version and the number of soft-deleted
records per entity kind awaiting restore or reaping.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	// Register flags
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	status, err := collectStatus(ctx, appCfg.DatabaseURL)
	if err != nil {
		return err
	}

	var output string
	if cfg.jsonOutput {
		output, err = formatStatusJSON(status)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
	} else {
		output = formatStatusTable(status)
	}

	cmd.Println(output)
	return nil
}

func collectStatus(ctx context.Context, databaseURL string) (*Status, error) {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = migrator.Close() }()

	version, dirty, err := migrator.Version()
	if err != nil {
		return nil, err
	}

	pool, err := store.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	svc := workspace.NewService(workspace.ServiceConfig{
		Stores:     postgres.NewStores(pool),
		Transactor: postgres.NewTransactor(pool),
	})

	status := &Status{
		SchemaVersion:  version,
		SchemaDirty:    dirty,
		DeletedRecords: make(map[string]int64, len(workspace.Kinds())),
	}
	for _, kind := range workspace.Kinds() {
		count, err := svc.CountDeleted(ctx, kind)
		if err != nil {
			return nil, err
		}
		status.DeletedRecords[string(kind)] = count
	}
	return status, nil
}

// formatStatusJSON formats the status as indented JSON.
func formatStatusJSON(status *Status) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status *Status) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Schema version: %d", status.SchemaVersion)
	if status.SchemaDirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n\n")

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tDELETED")
	for _, kind := range workspace.Kinds() {
		fmt.Fprintf(w, "%s\t%d\n", kind, status.DeletedRecords[string(kind)])
	}
	_ = w.Flush()
	return sb.String()
}
