package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Classifier ClassifierConfig
	Budget     BudgetConfig
	Log        LogConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path           string
	MigrationsPath string `mapstructure:"migrations_path"`
}

// ClassifierConfig points at the fitted model artifact.
type ClassifierConfig struct {
	ArtifactPath string `mapstructure:"artifact_path"`
}

// BudgetConfig holds cron specs for the scheduled maintenance passes.
type BudgetConfig struct {
	RolloverSpec string `mapstructure:"rollover_spec"`
	BillSpec     string `mapstructure:"bill_spec"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix CENTSIBLE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "centsible", "centsible.db"))
	v.SetDefault("database.migrations_path", "internal/database/migrations")
	v.SetDefault("classifier.artifact_path", filepath.Join(os.Getenv("HOME"), ".local", "share", "centsible", "model.json"))
	v.SetDefault("budget.rollover_spec", "@monthly")
	v.SetDefault("budget.bill_spec", "@daily")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CENTSIBLE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "centsible"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CENTSIBLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
