package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"streamline/calendar"
	"streamline/config"
)

var planDate string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Extract one day's rosters and generate lesson plans",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		date, err := parseDate(planDate)
		if err != nil {
			return fmt.Errorf("bad --date: %w", err)
		}

		batch, err := extractDay(cmd.Context(), cfg, date)
		if err != nil {
			return err
		}
		report, err := generateDay(cmd.Context(), cfg, batch)
		if err != nil {
			return err
		}

		icsPath := filepath.Join(cfg.OutputFolder, "day.ics")
		if err := os.WriteFile(icsPath, []byte(calendar.BuildDayCalendar(batch)), 0o644); err != nil {
			return fmt.Errorf("write day calendar: %w", err)
		}

		if report == "" {
			cmd.Println("No lesson plans produced.")
			return nil
		}
		cmd.Print(report)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planDate, "date", "", "day to plan, YYYY-MM-DD (default today)")
}
