// Package config loads campusmate settings from campusmate.yaml, CAMPUSMATE_* environment
// variables and built-in defaults, in that order of increasing precedence for env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CAMPUSMATE_ADVISOR_PROVIDER.
const EnvPrefix = "CAMPUSMATE"

// Advisor providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOffline   = "offline"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds all configuration for campusmate.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Advisor     AdvisorConfig     `mapstructure:"advisor"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	History     HistoryConfig     `mapstructure:"history"`
	Store       StoreConfig       `mapstructure:"store"`
	Knowledge   KnowledgeConfig   `mapstructure:"knowledge"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig holds the HTTP and MCP listeners.
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MCPAddr     string `mapstructure:"mcp_addr"`
	WeChatToken string `mapstructure:"wechat_token"`
}

// AdvisorConfig selects and configures the language model.
type AdvisorConfig struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	SummaryLimit int    `mapstructure:"summary_limit"`
}

// CoordinatorConfig bounds session processing.
type CoordinatorConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	HandleTimeout time.Duration `mapstructure:"handle_timeout"`
	Retention     int           `mapstructure:"retention"`
	MaxInputSize  int           `mapstructure:"max_input_size"`
}

// HistoryConfig holds conversation memory settings.
type HistoryConfig struct {
	MaxTurns int           `mapstructure:"max_turns"`
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RedisConfig holds the shared Redis connection.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// StoreConfig holds the session archive settings.
type StoreConfig struct {
	Backend       string      `mapstructure:"backend"`
	Redis         RedisConfig `mapstructure:"redis"`
	FileDir       string      `mapstructure:"file_dir"`
	PIIPatterns   []string    `mapstructure:"pii_patterns"`
	EncryptionKey string      `mapstructure:"encryption_key"`
}

// KnowledgeConfig holds the knowledge store settings.
type KnowledgeConfig struct {
	StaticFile         string `mapstructure:"static_file"`
	Facts              string `mapstructure:"facts"`
	SQLitePath         string `mapstructure:"sqlite_path"`
	PromotionThreshold int    `mapstructure:"promotion_threshold"`
	Watch              bool   `mapstructure:"watch"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads campusmate.yaml from the working directory or the user config dir, then
// applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("campusmate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return decode(v)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Advisor.APIKey = os.ExpandEnv(cfg.Advisor.APIKey)
	if cfg.Advisor.APIKey == "" {
		cfg.Advisor.APIKey = providerKey(cfg.Advisor.Provider)
	}
	cfg.Store.EncryptionKey = os.ExpandEnv(cfg.Store.EncryptionKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// providerKey falls back to the SDKs' conventional variables.
func providerKey(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

// Validate checks enumerated fields and bounds.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{ProviderAnthropic, ProviderOpenAI, ProviderOffline}, c.Advisor.Provider) {
		errs = append(errs, fmt.Errorf("advisor.provider: unknown provider %q", c.Advisor.Provider))
	}
	if !slices.Contains([]string{BackendMemory, BackendRedis, BackendFile}, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	if !slices.Contains([]string{BackendMemory, BackendRedis}, c.History.Backend) {
		errs = append(errs, fmt.Errorf("history.backend: unknown backend %q", c.History.Backend))
	}
	if !slices.Contains([]string{BackendMemory, BackendSQLite}, c.Knowledge.Facts) {
		errs = append(errs, fmt.Errorf("knowledge.facts: unknown backend %q", c.Knowledge.Facts))
	}
	if c.Knowledge.Facts == BackendSQLite && c.Knowledge.SQLitePath == "" {
		errs = append(errs, errors.New("knowledge.sqlite_path: required for the sqlite backend"))
	}
	if c.Coordinator.Timeout <= 0 {
		errs = append(errs, errors.New("coordinator.timeout: must be positive"))
	}
	if c.History.MaxTurns < 0 {
		errs = append(errs, errors.New("history.max_turns: must not be negative"))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether any component needs the Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Store.Backend == BackendRedis || c.History.Backend == BackendRedis
}

// LockTTL bounds the per-user turn lock. It outlives a full turn so a slow turn
// never loses its lock to a second request of the same user.
func (c *Config) LockTTL() time.Duration {
	return c.Coordinator.Timeout + 30*time.Second
}

// setDefaults configures default values. Every key needs one so env overrides apply.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mcp_addr", ":8081")
	v.SetDefault("server.wechat_token", "")

	v.SetDefault("advisor.provider", ProviderOffline)
	v.SetDefault("advisor.model", "")
	v.SetDefault("advisor.api_key", "")
	v.SetDefault("advisor.base_url", "")
	v.SetDefault("advisor.max_tokens", 1024)
	v.SetDefault("advisor.summary_limit", 250)

	v.SetDefault("coordinator.timeout", "180s")
	v.SetDefault("coordinator.handle_timeout", "90s")
	v.SetDefault("coordinator.retention", 1024)
	v.SetDefault("coordinator.max_input_size", 4096)

	v.SetDefault("history.max_turns", 3)
	v.SetDefault("history.backend", BackendMemory)
	v.SetDefault("history.ttl", "24h")

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "campusmate:")
	v.SetDefault("store.redis.ttl", "168h")
	v.SetDefault("store.file_dir", ".campusmate/sessions")
	v.SetDefault("store.pii_patterns", []string{})
	v.SetDefault("store.encryption_key", "")

	v.SetDefault("knowledge.static_file", "")
	v.SetDefault("knowledge.facts", BackendMemory)
	v.SetDefault("knowledge.sqlite_path", "campusmate.db")
	v.SetDefault("knowledge.promotion_threshold", 3)
	v.SetDefault("knowledge.watch", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// userConfigDir returns the XDG config directory for campusmate.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "campusmate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "campusmate")
	}
	return filepath.Join(home, ".config", "campusmate")
}

// Default returns a Config with default values.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// Defaults always validate; a failure here is a programming error.
		panic(err)
	}
	return cfg
}
