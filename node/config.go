// Package node wires the DEX subsystem's configuration and logging for
// a standalone binary: layered config via viper/pflag, and structured
// logging via zap.
package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/waykidex/node/dex"
)

// Config is the DEX subsystem's standalone runtime configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	SystemMatcherRegId string `mapstructure:"system_matcher_regid"`
	RiskReserveRegId    string `mapstructure:"risk_reserve_regid"`

	OperatorFeeRatioCap uint64 `mapstructure:"operator_fee_ratio_cap"`
	MinViableTradeCoin  uint64 `mapstructure:"min_viable_trade_coin"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// DefaultDataDir mirrors the node's own convention: $HOME/.<name>.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".waykidex"
	}
	return filepath.Join(home, ".waykidex")
}

// DefaultConfig returns the subsystem's default policy.
func DefaultConfig() Config {
	return Config{
		DataDir:             DefaultDataDir(),
		LogLevel:            "info",
		LogFormat:           "console",
		OperatorFeeRatioCap: dex.DefaultOperatorFeeRatioCap,
		MinViableTradeCoin:  1000,
	}
}

// Load builds a viper-backed config: defaults, then an optional YAML
// file, then WAYKIDEX_*-prefixed environment overrides, then any flags
// already bound into fs (via BindFlags).
func Load(configPath string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("system_matcher_regid", defaults.SystemMatcherRegId)
	v.SetDefault("risk_reserve_regid", defaults.RiskReserveRegId)
	v.SetDefault("operator_fee_ratio_cap", defaults.OperatorFeeRatioCap)
	v.SetDefault("min_viable_trade_coin", defaults.MinViableTradeCoin)

	v.SetEnvPrefix("WAYKIDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// BindFlags registers the subsystem's CLI flags on fs, seeded from
// defaults.
func BindFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("data_dir", defaults.DataDir, "DEX subsystem data directory")
	fs.String("log_level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.String("log_format", defaults.LogFormat, "log format: console|json")
	fs.String("system_matcher_regid", defaults.SystemMatcherRegId, "regid authorized to settle the reserved DEX (height-index)")
	fs.String("risk_reserve_regid", defaults.RiskReserveRegId, "regid that collects fees when no operator owns the DEX (height-index)")
	fs.Uint64("operator_fee_ratio_cap", defaults.OperatorFeeRatioCap, "ceiling on operator_fee_ratio under RequireAuth mode")
	fs.Uint64("min_viable_trade_coin", defaults.MinViableTradeCoin, "dust threshold for completing a market buy order")
}

// ValidateConfig checks required fields and value ranges.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	logFormat := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if _, ok := allowedLogFormats[logFormat]; !ok {
		return fmt.Errorf("invalid log_format %q", cfg.LogFormat)
	}
	if cfg.OperatorFeeRatioCap > dex.RatioBoost {
		return fmt.Errorf("operator_fee_ratio_cap must be <= %d", dex.RatioBoost)
	}
	return nil
}
