package config

// Package config provides a reusable loader for USDTgVerse configuration
// files and environment variables. It is versioned so that applications
// can depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"usdtgverse-core/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for a USDTgVerse core
// instance. It mirrors the structure of the YAML files under cmd/config.
type Config struct {
	Ledger struct {
		WALPath          string `mapstructure:"wal_path" json:"wal_path"`
		SnapshotPath     string `mapstructure:"snapshot_path" json:"snapshot_path"`
		SnapshotInterval int    `mapstructure:"snapshot_interval" json:"snapshot_interval"`
	} `mapstructure:"ledger" json:"ledger"`

	Server struct {
		WalletPort string `mapstructure:"wallet_port" json:"wallet_port"`
		BonusPort  string `mapstructure:"bonus_port" json:"bonus_port"`
		MetricsPort string `mapstructure:"metrics_port" json:"metrics_port"`
	} `mapstructure:"server" json:"server"`

	Recovery struct {
		CodeTTLSeconds  int `mapstructure:"code_ttl_seconds" json:"code_ttl_seconds"`
		CodeAttempts    int `mapstructure:"code_attempts" json:"code_attempts"`
		BackupCodeCount int `mapstructure:"backup_code_count" json:"backup_code_count"`
	} `mapstructure:"recovery" json:"recovery"`

	Bonus struct {
		MinPurchaseMajor uint64 `mapstructure:"min_purchase_major" json:"min_purchase_major"`
	} `mapstructure:"bonus" json:"bonus"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // lets matching OS environment variables override loaded keys; no .env file is read

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the USDTG_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("USDTG_ENV", ""))
}
