package cmd

import (
	"context"
	"errors"
	"time"

	"streamline/aiclient"
	"streamline/config"
	"streamline/model"
	"streamline/planner"
	"streamline/portal"
	"streamline/renderer"
	"streamline/vault"
)

// extractDay runs one browser session against the portal and returns the
// day's batch. The browser is torn down before returning, success or not.
func extractDay(ctx context.Context, cfg *config.Config, date time.Time) (*model.SessionBatch, error) {
	creds := portal.Credentials{
		Username: cfg.Portal.Username,
		Password: portal.ResolvePassword(vault.New(cfg.MasterKeyOrDefault()), cfg.Portal.Password),
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New("portal credentials missing; run `streamline configure` first")
	}

	browser, err := portal.NewBrowser(ctx, cfg.Portal.Headless)
	if err != nil {
		return nil, err
	}
	defer browser.Close()

	return portal.NewEngine(browser, cfg.Portal.URL).ExtractDay(ctx, creds, date)
}

// generateDay turns a batch into documents and returns the run report.
func generateDay(ctx context.Context, cfg *config.Config, batch *model.SessionBatch) (string, error) {
	ai := aiclient.New(cfg.AI.APIKey, cfg.AI.PlannerModel, cfg.AI.AnalyzerModel)
	return planner.New(ai, renderer.New()).Generate(ctx, batch, cfg.OutputFolder)
}

// parseDate reads a --date flag value, defaulting to today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", value)
}
