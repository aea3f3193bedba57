// Package config provides configuration loading for scamscan.
// It supports a layered configuration approach with priority:
// CLI flags > environment variables (SCAMSCAN_*) > .env file > config file
// (~/.scamscan.yaml) > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ProviderConfig holds the settings of a keyed reputation provider.
type ProviderConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// Active reports whether the provider is enabled and has an API key.
func (p ProviderConfig) Active() bool {
	return p.Enabled && strings.TrimSpace(p.APIKey) != ""
}

// WhoisConfig holds the settings of the domain-age provider.
type WhoisConfig struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled"`
	MinAgeDays int  `mapstructure:"min_age_days" yaml:"min_age_days"`
}

// TLSConfig holds the settings of the certificate provider.
type TLSConfig struct {
	Enabled        bool `mapstructure:"enabled" yaml:"enabled"`
	MinCertAgeDays int  `mapstructure:"min_cert_age_days" yaml:"min_cert_age_days"`
}

// RedirectConfig holds the settings of the redirect-chain provider.
type RedirectConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	MaxHops int  `mapstructure:"max_hops" yaml:"max_hops"`
}

// Providers groups the reputation provider settings.
type Providers struct {
	SafeBrowsing ProviderConfig `mapstructure:"safe_browsing" yaml:"safe_browsing"`
	VirusTotal   ProviderConfig `mapstructure:"virus_total" yaml:"virus_total"`
	Whois        WhoisConfig    `mapstructure:"whois" yaml:"whois"`
	TLS          TLSConfig      `mapstructure:"tls" yaml:"tls"`
	Redirects    RedirectConfig `mapstructure:"redirects" yaml:"redirects"`
}

// AIConfig holds the narrative collaborator settings.
type AIConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Model    string `mapstructure:"model" yaml:"model"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Learn    bool   `mapstructure:"learn" yaml:"learn"`
}

// Enabled reports whether an AI key is configured.
func (a AIConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// Config holds all scamscan configuration options.
type Config struct {
	OutputFormat string        `mapstructure:"output_format" yaml:"output_format"`
	Concurrency  int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	StorePath    string        `mapstructure:"store_path" yaml:"store_path"`
	HistoryLimit int           `mapstructure:"history_limit" yaml:"history_limit"`
	RulePacks    []string      `mapstructure:"rule_packs" yaml:"rule_packs"`
	Providers    Providers     `mapstructure:"providers" yaml:"providers"`
	AI           AIConfig      `mapstructure:"ai" yaml:"ai"`
}

// MemoryStore as store_path keeps every corpus in memory for one run.
const MemoryStore = "memory"

// Defaults returns a Config populated with default values.
func Defaults() Config {
	return Config{
		OutputFormat: "table",
		Concurrency:  4,
		Timeout:      15 * time.Second,
		StorePath:    DefaultStorePath(),
		HistoryLimit: 5,
		Providers: Providers{
			Whois:     WhoisConfig{MinAgeDays: 30},
			TLS:       TLSConfig{MinCertAgeDays: 3},
			Redirects: RedirectConfig{MaxHops: 10},
		},
		AI: AIConfig{
			Provider: "openrouter",
			Learn:    true,
		},
	}
}

// Load reads configuration from ~/.scamscan.yaml, a .env file in the working
// directory and environment variables.
// It does NOT apply CLI flag overrides; call ApplyFlags for that.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName(".scamscan")
	v.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return unmarshal(v)
}

// ApplyFlags overrides config values with any CLI flags that were explicitly set.
func ApplyFlags(cfg *Config, cmd *cobra.Command) {
	flags := cmd.Flags()

	if flags.Changed("output") {
		val, _ := flags.GetString("output")
		cfg.OutputFormat = val
	}
	if flags.Changed("concurrency") {
		val, _ := flags.GetInt("concurrency")
		cfg.Concurrency = val
	}
	if flags.Changed("timeout") {
		val, _ := flags.GetDuration("timeout")
		cfg.Timeout = val
	}
	if flags.Changed("store") {
		val, _ := flags.GetString("store")
		cfg.StorePath = val
	}
}

// ConfigFilePath returns the default config file path (~/.scamscan.yaml).
func ConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scamscan.yaml"
	}
	return filepath.Join(home, ".scamscan.yaml")
}

// DefaultStorePath returns the default SQLite database path
// (~/.scamscan/scamscan.db).
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scamscan", "scamscan.db")
	}
	return filepath.Join(home, ".scamscan", "scamscan.db")
}

// ExpandHome replaces a leading "~/" in path with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func newViper() *viper.Viper {
	// Real environment variables win over .env entries; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCAMSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("store_path", d.StorePath)
	v.SetDefault("history_limit", d.HistoryLimit)
	v.SetDefault("rule_packs", []string{})
	v.SetDefault("providers.safe_browsing.enabled", false)
	v.SetDefault("providers.safe_browsing.api_key", "")
	v.SetDefault("providers.safe_browsing.base_url", "")
	v.SetDefault("providers.virus_total.enabled", false)
	v.SetDefault("providers.virus_total.api_key", "")
	v.SetDefault("providers.virus_total.base_url", "")
	v.SetDefault("providers.whois.enabled", false)
	v.SetDefault("providers.whois.min_age_days", d.Providers.Whois.MinAgeDays)
	v.SetDefault("providers.tls.enabled", false)
	v.SetDefault("providers.tls.min_cert_age_days", d.Providers.TLS.MinCertAgeDays)
	v.SetDefault("providers.redirects.enabled", false)
	v.SetDefault("providers.redirects.max_hops", d.Providers.Redirects.MaxHops)
	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.learn", d.AI.Learn)
}
