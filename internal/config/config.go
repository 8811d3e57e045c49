package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"reviewdesk/internal/httpx"
	"reviewdesk/internal/logging"
)

const envPrefix = "REVIEWDESK_"

type Config struct {
	BackendURL     string `yaml:"backend_url" env:"BACKEND_URL"`
	InitData       string `yaml:"init_data" env:"INIT_DATA"`
	AttachInitData *bool  `yaml:"attach_init_data" env:"ATTACH_INIT_DATA"`

	// Credentials used by the non-interactive subcommands.
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds" env:"EXTERNAL_HTTP_TIMEOUT_SECONDS"`

	MainButtonText      string `yaml:"main_button_text" env:"MAIN_BUTTON_TEXT"`
	MainButtonColor     string `yaml:"main_button_color" env:"MAIN_BUTTON_COLOR"`
	MainButtonTextColor string `yaml:"main_button_text_color" env:"MAIN_BUTTON_TEXT_COLOR"`
	ScanPrompt          string `yaml:"scan_prompt" env:"SCAN_PROMPT"`

	AdminRefreshSchedule string `yaml:"admin_refresh_schedule" env:"ADMIN_REFRESH_SCHEDULE"`
	Timezone             string `yaml:"timezone" env:"TIMEZONE"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogPath  string `yaml:"log_path" env:"LOG_PATH"`
	LogJSON  bool   `yaml:"log_json" env:"LOG_JSON"`

	Location *time.Location `yaml:"-" env:"-"` // computed from Timezone
}

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ResolvePath picks the config file: an explicit path wins, then CONFIG_PATH,
// then config.yaml.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return envPath
	}
	return "config.yaml"
}

// Load reads the YAML file at path if it exists, applies REVIEWDESK_*
// environment overrides and defaults, and validates the result.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	if c.AttachInitData == nil {
		attach := true
		c.AttachInitData = &attach
	}
	if c.ExternalHTTPTimeoutSeconds == 0 {
		c.ExternalHTTPTimeoutSeconds = httpx.DefaultTimeoutSeconds()
	}
	if c.MainButtonText == "" {
		c.MainButtonText = "Save"
	}
	if c.MainButtonColor == "" {
		c.MainButtonColor = "#007BFF"
	}
	if c.MainButtonTextColor == "" {
		c.MainButtonTextColor = "#FFFFFF"
	}
	if c.ScanPrompt == "" {
		c.ScanPrompt = "Scan the barcode"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.BackendURL == "" {
		return errors.New("required config 'backend_url' is not set (via config.yaml or REVIEWDESK_BACKEND_URL)")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend_url '%s': must be an absolute http(s) URL", c.BackendURL)
	}
	if c.ExternalHTTPTimeoutSeconds < 1 {
		return fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 1", c.ExternalHTTPTimeoutSeconds)
	}
	for name, val := range map[string]string{
		"main_button_color":      c.MainButtonColor,
		"main_button_text_color": c.MainButtonTextColor,
	} {
		if !hexColorRe.MatchString(val) {
			return fmt.Errorf("invalid %s '%s': must look like #RRGGBB", name, val)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if strings.EqualFold(c.Timezone, "Local") {
		c.Location = time.Local
	} else {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
		}
		c.Location = loc
	}
	return nil
}

func (c Config) ShouldAttachInitData() bool {
	return c.AttachInitData == nil || *c.AttachInitData
}

func (c Config) HasCredentials() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}
