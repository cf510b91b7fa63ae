package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"calview/internal/dateutil"
	"calview/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. CALVIEW_LISTEN.
const EnvPrefix = "CALVIEW_"

const (
	defaultListen  = "127.0.0.1:8080"
	defaultRefresh = "*/15 * * * *"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// ID namespaces imported events. Defaults to Name, then URL.
	ID string `yaml:"id" json:"id"`
	// URL is the ICS endpoint or a local file path.
	URL string `yaml:"url" json:"url"`
	// Name labels events that carry no category.
	Name string `yaml:"name" json:"name"`
	// Color is used for events that carry no COLOR property.
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// DefaultView is the view served when a request names none ("month" or "week").
	DefaultView string `yaml:"default_view" json:"default_view"`

	// SlotIntervalMinutes is the step of /api/slots when no interval is given.
	SlotIntervalMinutes int `yaml:"slot_interval_minutes" json:"slot_interval_minutes"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// for ICS subscription refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir keeps the last good body of every ICS subscription.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Seed loads the sample events on startup.
	Seed bool `yaml:"seed" json:"seed"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:              defaultListen,
		DefaultView:         string(model.ViewMonth),
		SlotIntervalMinutes: dateutil.DefaultSlotInterval,
		RefreshCron:         defaultRefresh,
		CacheDir:            "./cache/ics",
		LogLevel:            "info",
		Seed:                true,
		ICS:                 []ICSConfig{},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if _, err := model.ParseViewMode(c.DefaultView); err != nil {
		c.DefaultView = string(model.ViewMonth)
	}
	if c.SlotIntervalMinutes <= 0 {
		c.SlotIntervalMinutes = dateutil.DefaultSlotInterval
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		src := &c.ICS[i]
		if src.ID != "" {
			continue
		}
		if src.Name != "" {
			src.ID = src.Name
		} else {
			src.ID = src.URL
		}
	}
}

// View returns DefaultView as a ViewMode.
func (c *Config) View() model.ViewMode {
	v, err := model.ParseViewMode(c.DefaultView)
	if err != nil {
		return model.ViewMonth
	}
	return v
}

// ApplyEnv overrides scalar settings from CALVIEW_* variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("LISTEN", &c.Listen)
	str("DEFAULT_VIEW", &c.DefaultView)
	str("REFRESH", &c.RefreshCron)
	str("CACHE_DIR", &c.CacheDir)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup(EnvPrefix + "SLOT_INTERVAL_MINUTES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSLOT_INTERVAL_MINUTES: %w", EnvPrefix, err)
		}
		c.SlotIntervalMinutes = n
	}
	if v, ok := lookup(EnvPrefix + "SEED"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		c.Seed = b
	}

	user, _ := lookup(EnvPrefix + "BASIC_AUTH_USERNAME")
	pass, _ := lookup(EnvPrefix + "BASIC_AUTH_PASSWORD")
	if user != "" && pass != "" {
		c.BasicAuth = &BasicAuthConfig{Username: user, Password: pass}
	}

	c.Normalize()
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (creating the parent directory) and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg atomically (temp file + rename) with 0600 permissions,
// creating the parent directory with 0700.
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

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calview-config-*.tmp")
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
