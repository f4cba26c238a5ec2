package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"streamline/calendar"
	"streamline/config"
	"streamline/uploader"
)

var (
	exportDate string
	exportOut  string
	exportPush bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Extract a day and export its schedule as ICS",
	Long: "Runs extraction only (no AI, no documents) and writes the day's classes\n" +
		"as an ICS calendar. With --push the file is also uploaded to the\n" +
		"configured GitHub repo.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		date, err := parseDate(exportDate)
		if err != nil {
			return fmt.Errorf("bad --date: %w", err)
		}

		batch, err := extractDay(cmd.Context(), cfg, date)
		if err != nil {
			return err
		}
		body := calendar.BuildDayCalendar(batch)

		if exportOut == "-" {
			cmd.Print(body)
			return nil
		}
		if err := os.WriteFile(exportOut, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write calendar: %w", err)
		}
		cmd.Printf("Wrote %d classes to %s\n", len(batch.Sessions), exportOut)

		if exportPush {
			gh := cfg.Github
			if gh.Token == "" || gh.Repo == "" || gh.Path == "" {
				return fmt.Errorf("github upload not configured")
			}
			if err := uploader.UploadFile(gh.Token, gh.Repo, gh.Path, exportOut); err != nil {
				return err
			}
			cmd.Printf("Uploaded to %s/%s\n", gh.Repo, gh.Path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "day to export, YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVar(&exportOut, "out", "day.ics", "output file, or - for stdout")
	exportCmd.Flags().BoolVar(&exportPush, "push", false, "upload the file to the configured GitHub repo")
}
