package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "streamline",
	Short: "Lesson plans from the swim-school scheduling portal",
	Long: "Streamline extracts a day's class rosters and skill assessments from the\n" +
		"scheduling portal and generates a lesson-plan document per class.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(*cobra.Command, []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(exportCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
