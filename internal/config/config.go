package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config files ending in .toml are read and written as TOML; everything
// else is YAML.

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" toml:"url" json:"url"`
	// ID is an internal identifier used for logging and deadline sources.
	ID string `yaml:"id" toml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" toml:"name" json:"name"`
}

// SourceID returns the ID, falling back to Name then URL.
func (c ICSConfig) SourceID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return c.URL
	}
}

// FeedConfig lists where deadlines are loaded from.
type FeedConfig struct {
	// JSON is a file holding the serialized deadline array.
	JSON string `yaml:"json" toml:"json" json:"json"`
	// SQLite is a database with a `deadlines` table.
	SQLite string `yaml:"sqlite" toml:"sqlite" json:"sqlite"`
	// ICS is the list of subscribed calendar feeds.
	ICS []ICSConfig `yaml:"ics" toml:"ics" json:"ics"`

	// BackfillDays / HorizonDays bound recurring ICS expansion around today.
	BackfillDays int `yaml:"backfill_days" toml:"backfill_days" json:"backfill_days"`
	HorizonDays  int `yaml:"horizon_days" toml:"horizon_days" json:"horizon_days"`

	// CacheDir stores ICS bodies and ETags between fetches.
	CacheDir string `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`
}

// CompletionConfig points at the application that owns deadline records.
type CompletionConfig struct {
	// BaseURL of the host application, e.g. "http://127.0.0.1:5000".
	// When empty, completion forms post to the relative path.
	BaseURL string `yaml:"base_url" toml:"base_url" json:"base_url"`
	// CSRFToken is forwarded as csrf_token when the request carries none.
	CSRFToken string `yaml:"csrf_token" toml:"csrf_token" json:"-"`
}

// CaptureConfig controls PNG snapshots of the calendar page.
type CaptureConfig struct {
	// Cron is a five-field schedule ("*/15 * * * *"). Empty disables
	// scheduled capture.
	Cron   string `yaml:"cron" toml:"cron" json:"cron"`
	URL    string `yaml:"url" toml:"url" json:"url"`
	Output string `yaml:"output" toml:"output" json:"output"`
	Width  int    `yaml:"width" toml:"width" json:"width"`
	Height int    `yaml:"height" toml:"height" json:"height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" toml:"username" json:"username"`
	Password string `yaml:"password" toml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" toml:"listen" json:"listen"`

	// Timezone is the IANA zone used for date bucketing (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" toml:"timezone" json:"timezone"`

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start" toml:"week_start" json:"week_start"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`

	Feed       FeedConfig       `yaml:"feed" toml:"feed" json:"feed"`
	Completion CompletionConfig `yaml:"completion" toml:"completion" json:"completion"`
	Capture    CaptureConfig    `yaml:"capture" toml:"capture" json:"capture"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" toml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "UTC"
	defaultWeekStart    = "sunday"
	defaultBackfillDays = 62
	defaultHorizonDays  = 366
	defaultCacheDir     = "./cache/ics"
	defaultCaptureOut   = "./cache/preview.png"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{
		Feed: FeedConfig{JSON: "./deadlines.json"},
	}
	c.Normalize()
	return c
}

// Normalize fills missing values with defaults and resets invalid ones.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch strings.ToLower(c.WeekStart) {
	case "sunday", "monday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		c.WeekStart = defaultWeekStart
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Feed.BackfillDays <= 0 {
		c.Feed.BackfillDays = defaultBackfillDays
	}
	if c.Feed.HorizonDays <= 0 {
		c.Feed.HorizonDays = defaultHorizonDays
	}
	if c.Feed.CacheDir == "" {
		c.Feed.CacheDir = defaultCacheDir
	}
	if c.Feed.ICS == nil {
		c.Feed.ICS = []ICSConfig{}
	}
	c.Completion.BaseURL = strings.TrimRight(c.Completion.BaseURL, "/")
	if c.Capture.Output == "" {
		c.Capture.Output = defaultCaptureOut
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		c.BasicAuth = nil
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Weekday returns the configured first day of the week.
func (c *Config) Weekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// CaptureURL is the page to snapshot; defaults to this server's /calendar.
func (c *Config) CaptureURL() string {
	if c.Capture.URL != "" {
		return c.Capture.URL
	}
	return "http://" + c.Listen + "/calendar"
}

// Load reads the configuration at path.
//
// A missing file is created with defaults (0600) and the defaults are
// returned. Existing files are decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := decode(path, data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func encode(path string, cfg *Config) ([]byte, error) {
	if isTOML(path) {
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
	return yaml.Marshal(cfg)
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) when needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := encode(path, cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ddlcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
