// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Depth     DepthConfig     `mapstructure:"depth"`
	Tokens    []TokenConfig   `mapstructure:"tokens"`
	Routes    []RouteConfig   `mapstructure:"routes"`
	Volume    VolumeConfig    `mapstructure:"volume"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ProviderConfig parameterizes the remote quote endpoint: transport,
// admission control and retry knobs.
type ProviderConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxRetries        int           `mapstructure:"max_retries"`
	BaseBackoff       time.Duration `mapstructure:"base_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	SenderAddress     string        `mapstructure:"sender_address"`
	RecipientAddress  string        `mapstructure:"recipient_address"`
}

// DepthConfig holds the liquidity depth search parameters.
type DepthConfig struct {
	ThresholdsBps []int64 `mapstructure:"thresholds_bps"`
	MaxUnits      int64   `mapstructure:"max_units"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

// TokenConfig describes one probeable token on one chain.
type TokenConfig struct {
	ChainID  string `mapstructure:"chain_id"`
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Decimals uint8  `mapstructure:"decimals"`
}

// RouteConfig names a directed route by token keys (chain:address).
type RouteConfig struct {
	Src string `mapstructure:"src"`
	Dst string `mapstructure:"dst"`
}

// VolumeConfig holds the historical volume aggregation source.
type VolumeConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RPCURL        string `mapstructure:"rpc_url"`
	TokenAddress  string `mapstructure:"token_address"`
	TokenSymbol   string `mapstructure:"token_symbol"`
	TokenDecimals uint8  `mapstructure:"token_decimals"`
	WindowBlocks  uint64 `mapstructure:"window_blocks"`
	ChunkBlocks   uint64 `mapstructure:"chunk_blocks"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("DP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Config file is optional, env vars can carry everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "DP_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "DP_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "DP_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("provider.base_url", "DP_PROVIDER_BASE_URL", "PROVIDER_BASE_URL")
	v.BindEnv("provider.request_timeout", "DP_PROVIDER_TIMEOUT")
	v.BindEnv("provider.requests_per_second", "DP_PROVIDER_RPS")
	v.BindEnv("provider.max_retries", "DP_PROVIDER_MAX_RETRIES")

	v.BindEnv("volume.rpc_url", "DP_VOLUME_RPC_URL", "ETH_RPC_URL")
	v.BindEnv("volume.token_address", "DP_VOLUME_TOKEN_ADDRESS")

	v.BindEnv("telemetry.enabled", "DP_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "DP_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "DP_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "data-provider")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("provider.request_timeout", "10s")
	v.SetDefault("provider.requests_per_second", 5.0)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.base_backoff", "500ms")
	v.SetDefault("provider.max_backoff", "10s")
	// Placeholder addresses: the remote protocol requires sender and
	// recipient fields even for pure quote probes.
	v.SetDefault("provider.sender_address", "0x0000000000000000000000000000000000000001")
	v.SetDefault("provider.recipient_address", "0x0000000000000000000000000000000000000001")

	v.SetDefault("depth.thresholds_bps", []int64{50, 100})
	v.SetDefault("depth.max_units", 1_000_000)
	v.SetDefault("depth.max_iterations", 24)

	v.SetDefault("volume.enabled", false)
	v.SetDefault("volume.window_blocks", 7200) // ~1 day at 12s blocks
	v.SetDefault("volume.chunk_blocks", 2000)  // common RPC getLogs range cap

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "data-provider")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.RequestsPerSecond <= 0 {
		return fmt.Errorf("provider.requests_per_second must be positive")
	}
	if c.Provider.MaxRetries < 0 {
		return fmt.Errorf("provider.max_retries cannot be negative")
	}
	if c.Provider.BaseBackoff <= 0 || c.Provider.MaxBackoff < c.Provider.BaseBackoff {
		return fmt.Errorf("provider backoff window is invalid: base=%s max=%s",
			c.Provider.BaseBackoff, c.Provider.MaxBackoff)
	}
	if len(c.Depth.ThresholdsBps) == 0 {
		return fmt.Errorf("depth.thresholds_bps cannot be empty")
	}
	for _, bps := range c.Depth.ThresholdsBps {
		if bps < 0 || bps > 10_000 {
			return fmt.Errorf("depth threshold out of range: %d bps", bps)
		}
	}
	if c.Depth.MaxUnits < 1 {
		return fmt.Errorf("depth.max_units must be at least 1")
	}
	if c.Depth.MaxIterations < 1 {
		return fmt.Errorf("depth.max_iterations must be at least 1")
	}
	if c.Volume.Enabled {
		if c.Volume.RPCURL == "" {
			return fmt.Errorf("volume.rpc_url is required when volume is enabled")
		}
		if c.Volume.TokenAddress == "" {
			return fmt.Errorf("volume.token_address is required when volume is enabled")
		}
		if c.Volume.ChunkBlocks == 0 {
			return fmt.Errorf("volume.chunk_blocks must be positive")
		}
	}
	return nil
}
