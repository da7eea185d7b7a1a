// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/leadwizard/internal/pricing"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for leadwizard.
type Config struct {
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ResetDelay time.Duration `mapstructure:"reset_delay" yaml:"reset_delay"`
	Language   string        `mapstructure:"language" yaml:"language"`
	Agent      string        `mapstructure:"agent" yaml:"agent"`
	Plain      bool          `mapstructure:"plain" yaml:"plain"`
	LogLevel   string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile    string        `mapstructure:"log_file" yaml:"log_file"`
	Captcha    CaptchaConfig `mapstructure:"captcha" yaml:"captcha"`
	Pricing    pricing.Table `mapstructure:"pricing" yaml:"pricing"`
}

// CaptchaConfig configures the verification challenge.
type CaptchaConfig struct {
	SiteKey      string        `mapstructure:"site_key" yaml:"site_key"`
	ChallengeURL string        `mapstructure:"challenge_url" yaml:"challenge_url"`
	TTL          time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Languages the backend accepts.
var Languages = []string{"en", "es"}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Endpoint:   "http://localhost:8080",
		Timeout:    15 * time.Second,
		ResetDelay: 4 * time.Second,
		Language:   "en",
		LogLevel:   "info",
		Captcha: CaptchaConfig{
			ChallengeURL: "http://localhost:8080",
			TTL:          300 * time.Second,
		},
		Pricing: pricing.DefaultTable(),
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("leadwizard")

	def := Default()
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("reset_delay", def.ResetDelay)
	v.SetDefault("language", def.Language)
	v.SetDefault("agent", "")
	v.SetDefault("plain", false)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("captcha.site_key", "")
	v.SetDefault("captcha.challenge_url", def.Captcha.ChallengeURL)
	v.SetDefault("captcha.ttl", def.Captcha.TTL)
	v.SetDefault("pricing.smoker_factor", def.Pricing.SmokerFactor)
	v.SetDefault("pricing.per_dependent", def.Pricing.PerDependent)
	for p, amount := range def.Pricing.Base {
		v.SetDefault("pricing.base."+string(p), amount)
	}

	// Setup ENV binding with LEADWIZARD_ prefix
	v.SetEnvPrefix("LEADWIZARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings so Unmarshal sees values that have no config file entry
	for _, key := range []string{
		"endpoint", "timeout", "reset_delay", "language", "agent", "plain",
		"log_level", "log_file", "captcha.site_key", "captcha.challenge_url", "captcha.ttl",
	} {
		env := "LEADWIZARD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail later at submit time.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("endpoint must be set")
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("endpoint must be an http(s) URL: %s", c.Endpoint)
	}
	if c.ResetDelay <= 0 {
		return fmt.Errorf("reset_delay must be positive")
	}
	if !validLanguage(c.Language) {
		return fmt.Errorf("unsupported language %q (want one of %s)", c.Language, strings.Join(Languages, ", "))
	}
	if err := c.Pricing.Validate(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	return nil
}

func validLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/leadwizard/leadwizard.yml or $XDG_CONFIG_HOME/leadwizard/leadwizard.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "leadwizard", "leadwizard.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "leadwizard", "leadwizard.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "leadwizard.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(toFile(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileConfig mirrors Config with durations as strings so the written file
// reads back through viper's duration decoding.
type fileConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Timeout    string        `yaml:"timeout"`
	ResetDelay string        `yaml:"reset_delay"`
	Language   string        `yaml:"language"`
	Agent      string        `yaml:"agent,omitempty"`
	Plain      bool          `yaml:"plain"`
	LogLevel   string        `yaml:"log_level"`
	LogFile    string        `yaml:"log_file"`
	Captcha    fileCaptcha   `yaml:"captcha"`
	Pricing    pricing.Table `yaml:"pricing"`
}

type fileCaptcha struct {
	SiteKey      string `yaml:"site_key"`
	ChallengeURL string `yaml:"challenge_url"`
	TTL          string `yaml:"ttl"`
}

func toFile(cfg *Config) fileConfig {
	return fileConfig{
		Endpoint:   cfg.Endpoint,
		Timeout:    cfg.Timeout.String(),
		ResetDelay: cfg.ResetDelay.String(),
		Language:   cfg.Language,
		Agent:      cfg.Agent,
		Plain:      cfg.Plain,
		LogLevel:   cfg.LogLevel,
		LogFile:    cfg.LogFile,
		Captcha: fileCaptcha{
			SiteKey:      cfg.Captcha.SiteKey,
			ChallengeURL: cfg.Captcha.ChallengeURL,
			TTL:          cfg.Captcha.TTL.String(),
		},
		Pricing: cfg.Pricing,
	}
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
