// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-crm-sync/internal/config"
	"github.com/MKhiriev/go-crm-sync/internal/tui"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

// command carries the state shared by every subcommand.
type command struct {
	flags  config.Flags
	stdout io.Writer
	stderr io.Writer
	ids    *utils.UUIDGenerator
}

// NewRootCommand builds the crmsync command tree. Without a subcommand it
// runs a two-way sync.
func NewRootCommand(info models.AppBuildInfo, stdout, stderr io.Writer) *cobra.Command {
	c := &command{stdout: stdout, stderr: stderr, ids: utils.NewUUIDGenerator()}

	root := &cobra.Command{
		Use:           "crmsync",
		Short:         "Two-way sync between Twenty CRM and an Excel workbook",
		Version:       info.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          c.runSync,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(tui.RenderBuildInfo(info) + "\n")
	c.flags.Register(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "sync",
			Short: "Reconcile the CRM and the workbook in both directions",
			Args:  cobra.NoArgs,
			RunE:  c.runSync,
		},
		&cobra.Command{
			Use:   "pull",
			Short: "Overwrite the workbook with the CRM contents",
			Args:  cobra.NoArgs,
			RunE:  c.runPull,
		},
		&cobra.Command{
			Use:   "push",
			Short: "Send new and changed workbook rows to the CRM",
			Args:  cobra.NoArgs,
			RunE:  c.runPush,
		},
		&cobra.Command{
			Use:   "schedule",
			Short: "Run a two-way sync now and then every SYNC_INTERVAL_MINUTES",
			Args:  cobra.NoArgs,
			RunE:  c.runSchedule,
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check that the CRM is reachable",
			Args:  cobra.NoArgs,
			RunE:  c.runHealth,
		},
		c.linkedInAuthCommand(),
		c.linkedInSyncCommand(),
		&cobra.Command{
			Use:   "linkedin-preview",
			Short: "Print the first rows of every LinkedIn snapshot domain",
			Args:  cobra.NoArgs,
			RunE:  c.runLinkedInPreview,
		},
	)

	return root
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, info models.AppBuildInfo, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(info, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", tui.HumanizeError(err))
	}
	return ExitCode(err)
}

// app builds the [App] for cmd. requireCRM additionally checks the CRM
// credentials.
func (c *command) app(cmd *cobra.Command, requireCRM bool) (*App, error) {
	app, err := NewApp(cmd.Context(), &c.flags, c.stdout, c.stderr)
	if err != nil {
		return nil, err
	}
	if requireCRM {
		if err = app.cfg.ValidateCRM(); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	return app, nil
}

// runContext tags ctx with a fresh run id.
func (c *command) runContext(ctx context.Context) context.Context {
	return utils.WithRunID(ctx, c.ids.Generate())
}
