// Package config holds the application configuration, loaded through viper
// from a YAML file with WDIO_MCP_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration document.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Driver DriverConfig `mapstructure:"driver" yaml:"driver"`
	Scan   ScanConfig   `mapstructure:"scan" yaml:"scan"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for console log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DriverConfig describes how to reach the WebDriver/Appium server.
type DriverConfig struct {
	// ServerURL is the WebDriver server base URL.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`
	// RequestTimeout bounds each driver round-trip.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	// RequestsPerSecond paces outbound driver requests; 0 disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// ScanConfig tunes the locator scan pipeline.
type ScanConfig struct {
	// Platform is "android" or "ios".
	Platform string `mapstructure:"platform" yaml:"platform"`
	// BatchSize bounds concurrent per-element driver fetches.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
	// MaxAlternates caps alternate selectors kept per element.
	MaxAlternates int `mapstructure:"max_alternates" yaml:"max_alternates"`
	// TextCeiling caps the length of visible text used in a text selector.
	TextCeiling int `mapstructure:"text_ceiling" yaml:"text_ceiling"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "webdriverio-mcp")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("driver.server_url", "http://127.0.0.1:4723")
	v.SetDefault("driver.request_timeout", "30s")
	v.SetDefault("driver.requests_per_second", 0.0)

	v.SetDefault("scan.platform", "android")
	v.SetDefault("scan.batch_size", 10)
	v.SetDefault("scan.max_alternates", 1)
	v.SetDefault("scan.text_ceiling", 20)
}

// Load reads the configuration file (or the defaults when none exists) plus
// environment overrides, and unmarshals the result.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("WDIO_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig returns a Config populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}
