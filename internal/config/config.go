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
	Database DatabaseConfig
	Log      LogConfig
	Ledger   LedgerConfig
	Export   ExportConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path     string
	SeedDemo bool `mapstructure:"seed_demo"`
}

// LogConfig holds logger settings. The terminal belongs to the TUI, so logs go to a file.
type LogConfig struct {
	Level string
	File  string
}

// LedgerConfig is the filter shown when no saved state exists.
type LedgerConfig struct {
	Filter    string
	AccountID int64 `mapstructure:"account_id"`
	FundID    int64 `mapstructure:"fund_id"`
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	Dir string
}

// Path is the config file location. TALLIS_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv("TALLIS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "tallis", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix TALLIS_.
// A missing file is not an error.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "tallis", "tallis.db"))
	v.SetDefault("database.seed_demo", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(home, ".local", "state", "tallis", "tallis.log"))
	v.SetDefault("ledger.filter", "account")
	v.SetDefault("ledger.account_id", 0)
	v.SetDefault("ledger.fund_id", 0)
	v.SetDefault("export.dir", home)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("TALLIS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.seed_demo", cfg.Database.SeedDemo)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("ledger.filter", cfg.Ledger.Filter)
	v.Set("ledger.account_id", cfg.Ledger.AccountID)
	v.Set("ledger.fund_id", cfg.Ledger.FundID)
	v.Set("export.dir", cfg.Export.Dir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
