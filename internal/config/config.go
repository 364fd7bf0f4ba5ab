package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"timeclock/internal/timeclock"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Session      SessionConfig      `yaml:"session"`
	Security     SecurityConfig     `yaml:"security"`
	DefaultAdmin DefaultAdminConfig `yaml:"default_admin"`
	Clock        ClockConfig        `yaml:"clock"`
	AutoClockOut AutoClockOutConfig `yaml:"auto_clock_out"`
	Discord      DiscordConfig      `yaml:"discord"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Mode        string   `yaml:"mode"`
	CORSOrigins []string `yaml:"cors_origins"`
	StaticDir   string   `yaml:"static_dir"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type DatabaseConfig struct {
	Type   string       `yaml:"type"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	Bolt   BoltConfig   `yaml:"bolt"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
}

type BoltConfig struct {
	Path    string `yaml:"path"`
	Timeout string `yaml:"timeout"`
}

type SessionConfig struct {
	Secret     string `yaml:"secret"`
	TTL        string `yaml:"ttl"`
	CookieName string `yaml:"cookie_name"`
	Secure     bool   `yaml:"secure"`
	Issuer     string `yaml:"issuer"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type DefaultAdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ClockConfig struct {
	Timezone           string              `yaml:"timezone"`
	EnforceTransitions bool                `yaml:"enforce_transitions"`
	ClockInWindow      ClockInWindowConfig `yaml:"clock_in_window"`
}

type ClockInWindowConfig struct {
	Earliest  string `yaml:"earliest"`
	Latest    string `yaml:"latest"`
	LateAfter string `yaml:"late_after"`
}

type AutoClockOutConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Time         string `yaml:"time"`
	PollInterval string `yaml:"poll_interval"`
	Note         string `yaml:"note"`
}

type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Footer     string `yaml:"footer"`
	Timeout    string `yaml:"timeout"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 3001, Mode: "release", StaticDir: "web/dist"},
		Log:    LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{
			Type:   "sqlite",
			SQLite: SQLiteConfig{Path: "data/timeclock.db"},
			MySQL:  MySQLConfig{Host: "127.0.0.1", Port: 3306, Charset: "utf8mb4"},
			Bolt:   BoltConfig{Path: "data/timeclock.bolt", Timeout: "1s"},
		},
		Session:      SessionConfig{TTL: "12h", CookieName: "timeclock_session", Issuer: "timeclock"},
		Security:     SecurityConfig{BcryptCost: 10},
		DefaultAdmin: DefaultAdminConfig{Username: "admin"},
		Clock:        ClockConfig{Timezone: "America/Los_Angeles", EnforceTransitions: true},
		AutoClockOut: AutoClockOutConfig{
			Enabled:      true,
			Time:         "18:00",
			PollInterval: "60s",
			Note:         "Automatic clock-out",
		},
		Discord: DiscordConfig{Footer: "Employee Time Clock", Timeout: "10s"},
	}
}

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.Session.Secret = secret
	}

	// Ensure data directory exists for file-backed stores
	if path := cfg.Database.FilePath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	envOverride(&cfg.Session.Secret, "TIMECLOCK_SESSION_SECRET")
	envOverride(&cfg.Database.Type, "TIMECLOCK_DB_TYPE")
	envOverride(&cfg.Database.SQLite.Path, "TIMECLOCK_DB_PATH")
	envOverride(&cfg.Database.Bolt.Path, "TIMECLOCK_BOLT_PATH")
	envOverride(&cfg.Database.MySQL.Host, "TIMECLOCK_MYSQL_HOST")
	envOverrideInt(&cfg.Database.MySQL.Port, "TIMECLOCK_MYSQL_PORT")
	envOverride(&cfg.Database.MySQL.Username, "TIMECLOCK_MYSQL_USER")
	envOverride(&cfg.Database.MySQL.Password, "TIMECLOCK_MYSQL_PASSWORD")
	envOverride(&cfg.Database.MySQL.Database, "TIMECLOCK_MYSQL_DATABASE")
	envOverride(&cfg.DefaultAdmin.Username, "TIMECLOCK_ADMIN_USERNAME")
	envOverride(&cfg.DefaultAdmin.Password, "TIMECLOCK_ADMIN_PASSWORD")
	envOverride(&cfg.Discord.WebhookURL, "DISCORD_WEBHOOK_URL")
	envOverride(&cfg.Clock.Timezone, "TIMECLOCK_TIMEZONE")
	envOverride(&cfg.AutoClockOut.Time, "TIMECLOCK_AUTO_CLOCK_OUT_TIME")
	envOverride(&cfg.Log.Level, "TIMECLOCK_LOG_LEVEL")
	envOverride(&cfg.Log.File, "TIMECLOCK_LOG_FILE")
	envOverrideInt(&cfg.Server.Port, "PORT")
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("SQLite path is required")
		}
	case "mysql":
		if c.Database.MySQL.Username == "" {
			return fmt.Errorf("MySQL username is required")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("MySQL database name is required")
		}
	case "bolt":
		if c.Database.Bolt.Path == "" {
			return fmt.Errorf("bolt path is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		return fmt.Errorf("invalid clock.timezone %q: %w", c.Clock.Timezone, err)
	}
	if _, err := c.ClockInWindow(); err != nil {
		return err
	}
	if c.AutoClockOut.Enabled {
		if _, err := timeclock.ParseClock(c.AutoClockOut.Time); err != nil {
			return fmt.Errorf("invalid auto_clock_out.time: %w", err)
		}
	}
	for name, value := range map[string]string{
		"session.ttl":                  c.Session.TTL,
		"auto_clock_out.poll_interval": c.AutoClockOut.PollInterval,
		"discord.timeout":              c.Discord.Timeout,
		"database.bolt.timeout":        c.Database.Bolt.Timeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// FilePath returns the on-disk location of file-backed stores.
func (d DatabaseConfig) FilePath() string {
	switch d.Type {
	case "sqlite":
		return d.SQLite.Path
	case "bolt":
		return d.Bolt.Path
	}
	return ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ClockInWindow converts the configured "HH:MM" bounds.
func (c *Config) ClockInWindow() (timeclock.ClockInWindow, error) {
	var w timeclock.ClockInWindow
	bounds := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"earliest", c.Clock.ClockInWindow.Earliest, &w.Earliest},
		{"latest", c.Clock.ClockInWindow.Latest, &w.Latest},
		{"late_after", c.Clock.ClockInWindow.LateAfter, &w.LateAfter},
	}
	for _, b := range bounds {
		if b.value == "" {
			continue
		}
		d, err := timeclock.ParseClock(b.value)
		if err != nil {
			return w, fmt.Errorf("invalid clock.clock_in_window.%s: %w", b.name, err)
		}
		*b.dst = d
	}
	return w, nil
}

// Duration parses a validated duration string, falling back when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
