// Package config provides configuration management for Trainer.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	MinTickInterval = 10 * time.Millisecond
	MaxTickInterval = time.Second

	defaultDataDir = "~/.trainer"
)

// ErrUnknownSetting is returned by Set for a key that is not a setting.
var ErrUnknownSetting = errors.New("unknown setting")

// Config holds all configuration for the Trainer application.
type Config struct {
	Session       SessionConfig      `mapstructure:"session"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Library       LibraryConfig      `mapstructure:"library"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// SessionConfig holds session timing settings.
type SessionConfig struct {
	TickInterval       Duration `mapstructure:"tick_interval"`
	ResumeOnForeground bool     `mapstructure:"resume_on_foreground"`
}

// NotificationConfig holds cue settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LibraryConfig holds program library settings.
type LibraryConfig struct {
	// ProgramsDir holds user programs. Empty means <data_dir>/programs.
	ProgramsDir string `mapstructure:"programs_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ThemeConfig holds theme colors.
type ThemeConfig struct {
	ColorExercise         string `mapstructure:"color_exercise"`
	ColorRest             string `mapstructure:"color_rest"`
	ColorPaused           string `mapstructure:"color_paused"`
	ColorTitle            string `mapstructure:"color_title"`
	ColorHelp             string `mapstructure:"color_help"`
	ExerciseGradientStart string `mapstructure:"exercise_gradient_start"`
	ExerciseGradientEnd   string `mapstructure:"exercise_gradient_end"`
	RestGradientStart     string `mapstructure:"rest_gradient_start"`
	RestGradientEnd       string `mapstructure:"rest_gradient_end"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorExercise:         "#F97316",
		ColorRest:             "#4ECDC4",
		ColorPaused:           "#6B7280",
		ColorTitle:            "#6B7280",
		ColorHelp:             "#95A5A6",
		ExerciseGradientStart: "#F97316",
		ExerciseGradientEnd:   "#FACC15",
		RestGradientStart:     "#4ECDC4",
		RestGradientEnd:       "#2ECC71",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			TickInterval: Duration(100 * time.Millisecond),
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file, creating it
// with defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path, creating it with defaults if
// it does not exist.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return decode(v)
}

// decode unmarshals, validates and expands the settings held by v.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	if cfg.Library.ProgramsDir != "" {
		programsDir, err := expandHome(cfg.Library.ProgramsDir)
		if err != nil {
			return nil, err
		}
		cfg.Library.ProgramsDir = programsDir
	}

	return &cfg, nil
}

// Set changes one dotted setting, such as "session.tick_interval", and
// validates the result. c is left untouched on error.
func (c *Config) Set(key, value string) error {
	settings := c.Settings()
	current, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	v := viper.New()
	for k, val := range settings {
		v.Set(k, val)
	}

	switch current.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		v.Set(key, b)
	default:
		v.Set(key, value)
	}

	next, err := decode(v)
	if err != nil {
		return err
	}
	*c = *next
	return nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes the configuration to path.
func SaveTo(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	for key, value := range cfg.Settings() {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Settings flattens the configuration into dotted viper keys.
func (c *Config) Settings() map[string]any {
	return map[string]any{
		"session.tick_interval":         c.Session.TickInterval.String(),
		"session.resume_on_foreground":  c.Session.ResumeOnForeground,
		"notifications.enabled":         c.Notifications.Enabled,
		"notifications.sound":           c.Notifications.Sound,
		"storage.data_dir":              c.Storage.DataDir,
		"library.programs_dir":          c.Library.ProgramsDir,
		"logging.level":                 c.Logging.Level,
		"theme.color_exercise":          c.Theme.ColorExercise,
		"theme.color_rest":              c.Theme.ColorRest,
		"theme.color_paused":            c.Theme.ColorPaused,
		"theme.color_title":             c.Theme.ColorTitle,
		"theme.color_help":              c.Theme.ColorHelp,
		"theme.exercise_gradient_start": c.Theme.ExerciseGradientStart,
		"theme.exercise_gradient_end":   c.Theme.ExerciseGradientEnd,
		"theme.rest_gradient_start":     c.Theme.RestGradientStart,
		"theme.rest_gradient_end":       c.Theme.RestGradientEnd,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	tick := time.Duration(c.Session.TickInterval)
	if tick < MinTickInterval || tick > MaxTickInterval {
		return fmt.Errorf("session.tick_interval must be between %s and %s, got %s",
			MinTickInterval, MaxTickInterval, tick)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a logging.level value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", level)
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".trainer", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "trainer.db")
}

// GetProgramsDir returns the directory user programs are loaded from.
func GetProgramsDir(cfg *Config) string {
	if cfg.Library.ProgramsDir != "" {
		return cfg.Library.ProgramsDir
	}
	return filepath.Join(cfg.Storage.DataDir, "programs")
}

func expandHome(path string) (string, error) {
	if path == "" {
		path = defaultDataDir
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	for key, value := range DefaultConfig().Settings() {
		v.SetDefault(key, value)
	}
}
