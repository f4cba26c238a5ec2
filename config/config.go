package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"streamline/vault"
)

// PortalConfig holds the credentials and connection settings for the
// scheduling portal. Password is stored encrypted; legacy configs may
// still carry it as plaintext, which the login path tolerates.
type PortalConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Headless bool   `yaml:"headless"`
}

// AIConfig holds the generation API settings.
type AIConfig struct {
	APIKey        string `yaml:"api_key"`
	PlannerModel  string `yaml:"planner_model"`
	AnalyzerModel string `yaml:"analyzer_model"`
}

// GithubConfig enables publishing the exported day calendar to a repo.
// All three fields must be set for uploads to happen.
type GithubConfig struct {
	Token string `yaml:"token"`
	Repo  string `yaml:"repo"`
	Path  string `yaml:"path"`
}

type Config struct {
	Portal       PortalConfig  `yaml:"portal"`
	AI           AIConfig      `yaml:"ai"`
	Github       GithubConfig  `yaml:"github"`
	OutputFolder string        `yaml:"output_folder"`
	ServerAddr   string        `yaml:"server_addr"`
	Interval     time.Duration `yaml:"interval"`
	MasterKey    string        `yaml:"master_key"`
}

func defaults() *Config {
	return &Config{
		Portal: PortalConfig{
			URL:      "https://swimlessons.app",
			Headless: true,
		},
		AI: AIConfig{
			PlannerModel:  "gemini-2.0-flash-lite",
			AnalyzerModel: "gemini-2.0-flash-lite",
		},
		OutputFolder: "plans",
		ServerAddr:   ":8090",
		Interval:     time.Hour,
	}
}

// Load reads the YAML config at path, filling defaults for anything the
// file leaves out. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config back out. Mode 0600 because the file carries
// credentials.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// MasterKeyOrDefault returns the configured master key, or the
// machine-derived one when the config does not set it.
func (c *Config) MasterKeyOrDefault() string {
	if c.MasterKey != "" {
		return c.MasterKey
	}
	return vault.DefaultMasterKey()
}
