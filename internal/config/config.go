package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Referer        string        `mapstructure:"referer"`
	Title          string        `mapstructure:"title"`
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRPS         float64       `mapstructure:"max_rps"`
}

type RateLimitConfig struct {
	Store            string        `mapstructure:"store"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Window           time.Duration `mapstructure:"window"`
	CleanupThreshold int           `mapstructure:"cleanup_threshold"`
	Redis            RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"`
	Output string     `mapstructure:"output"`
	File   FileConfig `mapstructure:"file"`
}

type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MonitoringConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

type I18nConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

// LoadConfig loads configuration from file and environment variables.
//
// A missing upstream API key is deliberately not a load error: the service
// boots anyway and every chat request answers 503 until the key appears.
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.BindEnv("upstream.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("upstream.base_url", "OPENROUTER_BASE_URL")
	viper.BindEnv("upstream.referer", "OPENROUTER_REFERER")
	viper.BindEnv("rate_limit.redis.addr", "REDIS_ADDR")
	viper.BindEnv("rate_limit.redis.password", "REDIS_PASSWORD")
	viper.BindEnv("rate_limit.redis.db", "REDIS_DB")

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.shutdown_timeout", 30*time.Second)
	viper.SetDefault("server.max_body_bytes", 1<<20)

	viper.SetDefault("upstream.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("upstream.model", "google/gemini-2.5-pro-preview")
	viper.SetDefault("upstream.temperature", 0.3)
	viper.SetDefault("upstream.max_tokens", 1024)
	viper.SetDefault("upstream.request_timeout", 120*time.Second)
	viper.SetDefault("upstream.title", "Thera Coach")

	viper.SetDefault("rate_limit.store", "memory")
	viper.SetDefault("rate_limit.max_requests", 20)
	viper.SetDefault("rate_limit.window", time.Minute)
	viper.SetDefault("rate_limit.cleanup_threshold", 1000)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("monitoring.metrics.enabled", false)
	viper.SetDefault("monitoring.metrics.port", 9090)
	viper.SetDefault("monitoring.metrics.path", "/metrics")

	viper.SetDefault("i18n.default_language", "en")
}

func validateConfig(cfg *Config) error {
	if cfg.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}
	if cfg.Upstream.Model == "" {
		return fmt.Errorf("upstream model is required")
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate limit max_requests must be positive")
	}
	if cfg.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	switch cfg.RateLimit.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported rate limit store: %s", cfg.RateLimit.Store)
	}
	return nil
}
