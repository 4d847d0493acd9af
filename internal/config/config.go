// Package config loads classroom-emails settings from a YAML file, with
// environment (and .env) overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "classroom-emails.yaml"

// EnvFile is the dotenv file read before the environment overrides.
const EnvFile = ".env"

// Config holds every setting of a run.
type Config struct {
	// EmailDomain is appended after the registration number, e.g. "@example.org".
	EmailDomain string        `yaml:"email_domain"`
	Output      OutputConfig  `yaml:"output"`
	Classrooms  []string      `yaml:"classrooms"`
	Browser     BrowserConfig `yaml:"browser"`
	Log         LogConfig     `yaml:"log"`
}

type OutputConfig struct {
	CSV  string `yaml:"csv"`
	XLSX string `yaml:"xlsx"`
}

type BrowserConfig struct {
	Selector         string        `yaml:"selector"`
	LoginWait        time.Duration `yaml:"login_wait"`
	ScrollPause      time.Duration `yaml:"scroll_pause"`
	MaxScrolls       int           `yaml:"max_scrolls"`
	UserDataDir      string        `yaml:"user_data_dir"`
	ProfileDirectory string        `yaml:"profile_directory"`
	Headless         bool          `yaml:"headless"`
	Bin              string        `yaml:"bin"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the settings used when the config file is absent.
func Default() *Config {
	return &Config{
		EmailDomain: "@vitbhopal.ac.in",
		Output: OutputConfig{
			CSV: "classmates_emails.csv",
		},
		Browser: BrowserConfig{
			Selector:         "span.YVvGBb",
			LoginWait:        60 * time.Second,
			ScrollPause:      2 * time.Second,
			MaxScrolls:       200,
			ProfileDirectory: "Default",
		},
		Log: LogConfig{
			File:  "scraper_email_generator.log",
			Level: "info",
		},
	}
}

// Load reads .env (if present), the YAML file at path, then applies
// environment overrides and validates the result. A missing file at path
// leaves the defaults in place.
func Load(path string) (*Config, error) {
	if err := LoadEnvFile(EnvFile); err != nil {
		return nil, err
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error; a malformed one is.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadFile reads the YAML file at path on top of Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from ROSTER_* variables found by lookup.
// Unparseable boolean values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("ROSTER_EMAIL_DOMAIN"); ok {
		c.EmailDomain = v
	}
	if v, ok := lookup("ROSTER_OUTPUT_CSV"); ok {
		c.Output.CSV = v
	}
	if v, ok := lookup("ROSTER_OUTPUT_XLSX"); ok {
		c.Output.XLSX = v
	}
	if v, ok := lookup("ROSTER_USER_DATA_DIR"); ok {
		c.Browser.UserDataDir = v
	}
	if v, ok := lookup("ROSTER_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("ROSTER_HEADLESS"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Browser.Headless = b
		}
	}
}

// Validate checks that the settings can drive a run.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.EmailDomain, "@") || len(c.EmailDomain) < 2 {
		return fmt.Errorf("email_domain must start with '@', got %q", c.EmailDomain)
	}
	if strings.TrimSpace(c.Output.CSV) == "" {
		return fmt.Errorf("output.csv is required")
	}
	if strings.TrimSpace(c.Browser.Selector) == "" {
		return fmt.Errorf("browser.selector is required")
	}
	if c.Browser.LoginWait < 0 || c.Browser.ScrollPause < 0 {
		return fmt.Errorf("browser waits must not be negative")
	}
	if c.Browser.MaxScrolls <= 0 {
		return fmt.Errorf("browser.max_scrolls must be positive, got %d", c.Browser.MaxScrolls)
	}
	return nil
}

// ExpandHome replaces a leading "~/" in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
