package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"streamline/calendar"
	"streamline/config"
	"streamline/model"
	"streamline/site"
	"streamline/uploader"
)

const (
	maxRetries = 3
	retryPause = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planning loop and status server",
	Long: "Extracts and plans today's classes on a fixed interval, exports the day\n" +
		"calendar, and serves generated documents over HTTP.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logrus.WithField("component", "serve")

	var (
		mu     sync.Mutex
		latest *model.SessionBatch
	)
	if cfg.ServerAddr != "" {
		srv := site.New(cfg.OutputFolder, func() string {
			mu.Lock()
			defer mu.Unlock()
			if latest == nil {
				return ""
			}
			return calendar.BuildDayCalendar(latest)
		})
		go func() {
			if err := srv.Start(cfg.ServerAddr); err != nil {
				log.WithError(err).Error("status server stopped")
			}
		}()
	}

	// The portal session tolerates exactly one extraction at a time, so
	// runs are serialized even if an interval fires while one is active.
	sem := semaphore.NewWeighted(1)
	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		batch := runOnce(ctx, cfg, log)
		if batch != nil {
			mu.Lock()
			latest = batch
			mu.Unlock()
		}
		sem.Release(1)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Interval):
		}
	}
}

// runOnce extracts and plans today, giving transient failures a short
// pause and another attempt.
func runOnce(ctx context.Context, cfg *config.Config, log *logrus.Entry) *model.SessionBatch {
	for attempt := 1; attempt <= maxRetries; attempt++ {
		batch, err := extractDay(ctx, cfg, time.Now())
		if err != nil {
			log.WithError(err).Warnf("extraction failed, attempt %d", attempt)
			if sleepOrDone(ctx, retryPause) {
				return nil
			}
			continue
		}

		report, err := generateDay(ctx, cfg, batch)
		if err != nil {
			log.WithError(err).Warnf("generation failed, attempt %d", attempt)
			if sleepOrDone(ctx, retryPause) {
				return nil
			}
			continue
		}
		if report != "" {
			log.Info("run report:\n" + report)
		}

		exportCalendar(cfg, batch, log)
		return batch
	}
	log.Error("giving up on this run")
	return nil
}

func exportCalendar(cfg *config.Config, batch *model.SessionBatch, log *logrus.Entry) {
	icsPath := filepath.Join(cfg.OutputFolder, "day.ics")
	if err := os.WriteFile(icsPath, []byte(calendar.BuildDayCalendar(batch)), 0o644); err != nil {
		log.WithError(err).Warn("day calendar not written")
		return
	}
	gh := cfg.Github
	if gh.Token == "" || gh.Repo == "" || gh.Path == "" {
		return
	}
	if err := uploader.UploadFile(gh.Token, gh.Repo, gh.Path, icsPath); err != nil {
		log.WithError(err).Warn("calendar upload failed")
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return true
	case <-time.After(d):
		return false
	}
}
