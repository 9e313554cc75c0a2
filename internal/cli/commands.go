package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-crm-sync/internal/tui"
	"github.com/MKhiriev/go-crm-sync/internal/workers"
	"github.com/MKhiriev/go-crm-sync/models"
)

type pass func(ctx context.Context) (*models.Report, error)

func (c *command) runSync(cmd *cobra.Command, _ []string) error {
	return c.runPass(cmd, func(a *App) pass { return a.services.SyncService.SyncAll })
}

func (c *command) runPull(cmd *cobra.Command, _ []string) error {
	return c.runPass(cmd, func(a *App) pass { return a.services.SyncService.Pull })
}

func (c *command) runPush(cmd *cobra.Command, _ []string) error {
	return c.runPass(cmd, func(a *App) pass { return a.services.SyncService.Push })
}

// runPass runs one pass and prints its report. The report is printed even
// when the state could not be saved.
func (c *command) runPass(cmd *cobra.Command, pick func(*App) pass) error {
	app, err := c.app(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := pick(app)(c.runContext(cmd.Context()))
	if report != nil {
		_, _ = fmt.Fprint(c.stdout, tui.RenderReport(report))
	}
	return err
}

func (c *command) runSchedule(cmd *cobra.Command, _ []string) error {
	app, err := c.app(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	printReport := func(r *models.Report) {
		_, _ = fmt.Fprint(c.stdout, tui.RenderReport(r))
	}
	worker := workers.NewSyncWorker(app.services.SyncService, app.cfg.Sync.Interval(), printReport, app.logger)
	return workers.NewWorkers(worker).Run(cmd.Context())
}

func (c *command) runHealth(cmd *cobra.Command, _ []string) error {
	app, err := c.app(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if err = app.services.SyncService.Health(cmd.Context()); err != nil {
		app.logger.Error().Err(err).Str("url", app.cfg.CRM.URL).Msg("cannot reach the crm, check TWENTY_API_URL and the network")
		return fmt.Errorf("%w: %w", ErrHealthCheck, err)
	}
	_, _ = fmt.Fprintf(c.stdout, "Twenty CRM at %s is reachable\n", app.cfg.CRM.URL)
	return nil
}

func (c *command) linkedInAuthCommand() *cobra.Command {
	var (
		token     string
		expiresIn int64
	)
	cmd := &cobra.Command{
		Use:   "linkedin-auth",
		Short: "Obtain a LinkedIn access token, or store one given with --token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.app(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			feed := app.services.FeedService
			switch {
			case token != "":
				saved, err := feed.SaveToken(cmd.Context(), token, expiresIn)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(c.stdout, "Token %s saved to %s, expires %s\n",
					mask(saved.AccessToken), app.cfg.LinkedIn.TokenPath, saved.ExpiresAt.Format("2006-01-02"))
			case app.cfg.LinkedIn.AccessToken != "":
				_, _ = fmt.Fprintf(c.stdout, "Using LINKEDIN_ACCESS_TOKEN from the environment: %s\n", mask(app.cfg.LinkedIn.AccessToken))
			default:
				if err = app.cfg.ValidateLinkedIn(); err != nil {
					return fmt.Errorf("%w: %w", ErrConfig, err)
				}
				saved, err := feed.Authenticate(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(c.stdout, "Authenticated, token saved to %s, expires %s\n",
					app.cfg.LinkedIn.TokenPath, saved.ExpiresAt.Format("2006-01-02"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "store this access token instead of running the browser flow")
	cmd.Flags().Int64Var(&expiresIn, "expires-in", 0, "lifetime of --token in seconds (default 60 days)")
	return cmd
}

func (c *command) linkedInSyncCommand() *cobra.Command {
	var (
		scope  string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "linkedin-sync",
		Short: "Import LinkedIn connections into the CRM and the workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.app(cmd, true)
			if err != nil {
				return err
			}
			defer app.Close()

			feed := app.services.FeedService
			res, err := tui.RunWithSpinner(cmd.Context(), c.stdout, "importing linkedin connections",
				func(ctx context.Context) (models.FeedResult, error) {
					return feed.Import(ctx, models.FeedScope(scope), dryRun)
				})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(c.stdout, tui.RenderFeedResult(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", string(models.FeedScopeBoth), "what to import: both, people or companies")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count changes without writing anything")
	return cmd
}

func (c *command) runLinkedInPreview(cmd *cobra.Command, _ []string) error {
	app, err := c.app(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	feed := app.services.FeedService
	domains, err := tui.RunWithSpinner(cmd.Context(), c.stdout, "fetching linkedin snapshot",
		func(ctx context.Context) (map[string][]map[string]any, error) {
			return feed.Preview(ctx)
		})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(c.stdout, tui.RenderPreview(domains))
	return nil
}
