package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Tavily    TavilyConfig    `yaml:"tavily" mapstructure:"tavily"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Chat      ChatConfig      `yaml:"chat" mapstructure:"chat"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the SQLite persistence backend.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// TavilyConfig holds Tavily Search API settings (primary provider).
type TavilyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Depth   string `yaml:"depth" mapstructure:"depth"`
}

// JinaConfig holds Jina Search/Reader settings (fallback provider and
// article extraction).
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// SearchConfig configures retrieval behavior.
type SearchConfig struct {
	Enabled       bool     `yaml:"enabled" mapstructure:"enabled"`
	MaxResults    int      `yaml:"max_results" mapstructure:"max_results"`
	Institution   string   `yaml:"institution" mapstructure:"institution"`
	Domains       []string `yaml:"domains" mapstructure:"domains"`
	CacheTTLMins  int      `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	RatePerMinute int      `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// ChatConfig configures the response generator.
type ChatConfig struct {
	Temperature  float64 `yaml:"temperature" mapstructure:"temperature"`
	HistoryPairs int     `yaml:"history_pairs" mapstructure:"history_pairs"`
}

// ServerConfig configures the HTTP chat server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("APRENDIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	// API keys default to empty so Unmarshal sees the viper keys: with
	// AutomaticEnv alone, env-only values never reach the struct
	// (spf13/viper#761).
	v.SetDefault("anthropic.key", "")
	v.SetDefault("tavily.key", "")
	v.SetDefault("jina.key", "")
	v.SetDefault("store.path", "aprendiz.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 500)
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("tavily.depth", "basic")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("search.enabled", true)
	v.SetDefault("search.max_results", 6)
	v.SetDefault("search.institution", "senac")
	v.SetDefault("search.domains", []string{"senacrs.com.br", "senac.br"})
	v.SetDefault("search.cache_ttl_mins", 60)
	v.SetDefault("search.rate_per_minute", 30)
	v.SetDefault("chat.temperature", 0.35)
	v.SetDefault("chat.history_pairs", 6)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
