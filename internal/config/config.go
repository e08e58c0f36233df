package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Tags     TagsConfig     `mapstructure:"tags"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings. An empty File logs to stderr.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	File      string `mapstructure:"file"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// TagsConfig holds tag defaults.
type TagsConfig struct {
	DefaultColor string `mapstructure:"default_color"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Format string `mapstructure:"format"`
}

// Path returns the config file location: $JASKLEDGER_CONFIG or
// ~/.config/jaskledger/config.toml.
func Path() string {
	if p := os.Getenv("JASKLEDGER_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "jaskledger", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix JASKLEDGER_.
func Load() (Config, error) {
	return LoadFile(os.Getenv("JASKLEDGER_CONFIG"))
}

// LoadFile is Load with an explicit config file. An empty path falls back to
// the default search location; a missing file is not an error.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "jaskledger"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("JASKLEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "jaskledger", "ledger.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_files", 5)
	v.SetDefault("tags.default_color", "#868e96")
	v.SetDefault("ui.format", "text")
}

// Validate rejects settings the rest of the program cannot act on.
func (c Config) Validate() error {
	switch strings.ToLower(c.UI.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("ui.format must be text or json, got %q", c.UI.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is empty")
	}
	return nil
}

// missing files surface either as ConfigFileNotFoundError (search path) or
// as a stat error (explicit file)
func isMissingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

// Save writes the provided config to path, creating the config directory if
// needed. An empty path means Path().
func Save(cfg Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.Set("log.max_files", cfg.Log.MaxFiles)
	v.Set("tags.default_color", cfg.Tags.DefaultColor)
	v.Set("ui.format", cfg.UI.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
