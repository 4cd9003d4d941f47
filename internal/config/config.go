package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
	"github.com/hemanthvallapani/voice-calendar/internal/logging"
)

// Config keys.
const (
	KeyPort               = "PORT"
	KeyGoogleClientID     = "GOOGLE_CLIENT_ID"
	KeyGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	KeyGoogleRefreshToken = "GOOGLE_REFRESH_TOKEN"
	KeyCalendarID         = "CALENDAR_ID"
	KeyDefaultTimeZone    = "DEFAULT_TIMEZONE"
	KeyWorkdayStart       = "WORKDAY_START"
	KeyWorkdayEnd         = "WORKDAY_END"
	KeySlotDuration       = "SLOT_DURATION"
	KeyRateLimitPerMinute = "RATE_LIMIT_PER_MINUTE"
	KeyCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	KeyLogLevel           = "LOG_LEVEL"
	KeyLogFormat          = "LOG_FORMAT"
	KeyMetricsEnabled     = "METRICS_ENABLED"
	KeyMetricsAddr        = "METRICS_ADDR"
	KeyGinMode            = "GIN_MODE"
	KeyMCPAuthToken       = "MCP_AUTH_TOKEN"
)

// Config holds all configuration values.
type Config struct {
	Port int `mapstructure:"PORT"`

	// Google OAuth client and the long-lived refresh token minted by `auth`.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRefreshToken string `mapstructure:"GOOGLE_REFRESH_TOKEN"`
	CalendarID         string `mapstructure:"CALENDAR_ID"`

	// Working day.
	DefaultTimeZone string        `mapstructure:"DEFAULT_TIMEZONE"`
	WorkdayStart    string        `mapstructure:"WORKDAY_START"`
	WorkdayEnd      string        `mapstructure:"WORKDAY_END"`
	SlotDuration    time.Duration `mapstructure:"SLOT_DURATION"`

	// HTTP.
	RateLimitPerMinute int      `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	GinMode            string   `mapstructure:"GIN_MODE"`

	// MCPAuthToken protects /mcp with a static bearer token when set.
	MCPAuthToken string `mapstructure:"MCP_AUTH_TOKEN"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	MetricsAddr    string `mapstructure:"METRICS_ADDR"`
}

// New returns a viper instance with defaults set and the environment bound.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(KeyPort, 5000)
	v.SetDefault(KeyGoogleClientID, "")
	v.SetDefault(KeyGoogleClientSecret, "")
	v.SetDefault(KeyGoogleRefreshToken, "")
	v.SetDefault(KeyCalendarID, calendar.DefaultCalendarID)
	v.SetDefault(KeyDefaultTimeZone, appointments.DefaultTimeZone)
	v.SetDefault(KeyWorkdayStart, "09:00")
	v.SetDefault(KeyWorkdayEnd, "18:00")
	v.SetDefault(KeySlotDuration, appointments.DefaultSlotDuration)
	v.SetDefault(KeyRateLimitPerMinute, 120)
	v.SetDefault(KeyCORSAllowedOrigins, []string{"*"})
	v.SetDefault(KeyGinMode, "release")
	v.SetDefault(KeyMCPAuthToken, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatJSON)
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyMetricsAddr, ":9090")

	return v
}

// Load reads config.yaml and .env from dir (the working directory when
// empty), merges them into v and returns the validated result. Missing
// files are not an error.
func Load(v *viper.Viper, dir string) (*Config, error) {
	if dir == "" {
		dir = "."
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and formats. Google credentials are not required
// here; commands that talk to the calendar check them with RequireGoogle.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid %s %d", KeyPort, c.Port)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("%s must not be negative", KeyRateLimitPerMinute)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	if _, err := c.Appointments(); err != nil {
		return err
	}
	return nil
}

// RequireGoogle reports which Google credentials are missing.
func (c *Config) RequireGoogle() error {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, KeyGoogleClientID)
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, KeyGoogleClientSecret)
	}
	if c.GoogleRefreshToken == "" {
		missing = append(missing, KeyGoogleRefreshToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing Google credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Appointments converts the working-day settings.
func (c *Config) Appointments() (appointments.Config, error) {
	start, err := ParseClock(c.WorkdayStart)
	if err != nil {
		return appointments.Config{}, fmt.Errorf("invalid %s: %w", KeyWorkdayStart, err)
	}
	end, err := ParseClock(c.WorkdayEnd)
	if err != nil {
		return appointments.Config{}, fmt.Errorf("invalid %s: %w", KeyWorkdayEnd, err)
	}

	ac := appointments.Config{
		DefaultTimeZone: c.DefaultTimeZone,
		WorkdayStart:    start,
		WorkdayEnd:      end,
		SlotDuration:    c.SlotDuration,
	}
	if err := ac.Validate(); err != nil {
		return appointments.Config{}, err
	}
	return ac, nil
}

// ListenAddr returns the address the webhook server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseClock parses a wall-clock time "HH:MM" into an offset from midnight.
// "24:00" is accepted as the end of the day.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
