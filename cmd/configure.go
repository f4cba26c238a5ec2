package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"streamline/config"
	"streamline/vault"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set portal credentials and API keys",
	Long: "Prompts for the portal and AI settings and writes them to the config\n" +
		"file. The portal password is encrypted with a machine-derived key before\n" +
		"it is stored.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())

		cfg.Portal.URL = askDefault(cmd, in, "Portal URL", cfg.Portal.URL)
		cfg.Portal.Username = askDefault(cmd, in, "Portal username", cfg.Portal.Username)
		if pass := ask(cmd, in, "Portal password (blank to keep current)"); pass != "" {
			v := vault.New(cfg.MasterKeyOrDefault())
			cfg.Portal.Password = v.Encrypt(pass)
		}
		if key := ask(cmd, in, "AI API key (blank to keep current)"); key != "" {
			cfg.AI.APIKey = key
		}
		cfg.OutputFolder = askDefault(cmd, in, "Output folder", cfg.OutputFolder)

		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		cmd.Printf("Config saved to %s\n", cfgPath)
		return nil
	},
}

func ask(cmd *cobra.Command, in *bufio.Reader, label string) string {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func askDefault(cmd *cobra.Command, in *bufio.Reader, label, current string) string {
	display := current
	if display == "" {
		display = "unset"
	}
	if v := ask(cmd, in, fmt.Sprintf("%s [%s]", label, display)); v != "" {
		return v
	}
	return current
}
