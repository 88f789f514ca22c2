package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRPCEndpoint      = "https://api.devnet.solana.com"
	DefaultTokenListURL     = "https://raw.githubusercontent.com/solana-labs/token-list/main/src/tokens/solana.tokenlist.json"
	DefaultMetadataStoreKey = "solanaTokenMap"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`  // seconds
	WriteTimeout int    `yaml:"writeTimeout"` // seconds
	IdleTimeout  int    `yaml:"idleTimeout"`  // seconds
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PortfolioConfig holds configuration for the portfolio aggregator.
type PortfolioConfig struct {
	// RPCEndpoint is the fixed read endpoint used when FollowCluster is false.
	RPCEndpoint    string `yaml:"rpcEndpoint"`
	FollowCluster  bool   `yaml:"followCluster"`
	DefaultCluster string `yaml:"defaultCluster"`
	FetchTimeoutMs int64  `yaml:"fetchTimeoutMs"`
}

// RpcClientConfig holds configuration for Solana RPC clients.
type RpcClientConfig struct {
	DefaultTimeoutMs int64 `yaml:"defaultTimeoutMs"`
	RateLimit        int   `yaml:"rateLimit"` // requests per second, 0 disables throttling
	BurstLimit       int   `yaml:"burstLimit"`
}

// TokenListConfig holds configuration for the token list download.
type TokenListConfig struct {
	URL                  string `yaml:"url"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// RedisConfig holds connection settings for the redis metadata store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MetadataStoreConfig selects where the token metadata mapping is persisted.
type MetadataStoreConfig struct {
	Backend string      `yaml:"backend"` // "file", "redis" or "memory"
	Dir     string      `yaml:"dir"`
	Key     string      `yaml:"key"`
	Redis   RedisConfig `yaml:"redis"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecFile string `yaml:"specFile"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Portfolio     PortfolioConfig     `yaml:"portfolio"`
	RpcClient     RpcClientConfig     `yaml:"rpcClient"`
	TokenList     TokenListConfig     `yaml:"tokenList"`
	MetadataStore MetadataStoreConfig `yaml:"metadataStore"`
	Swagger       SwaggerConfig       `yaml:"swagger"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML config data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills zero values with defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Portfolio.RPCEndpoint == "" {
		cfg.Portfolio.RPCEndpoint = DefaultRPCEndpoint
		logrus.Infof("Portfolio.RPCEndpoint not set, defaulting to %s", cfg.Portfolio.RPCEndpoint)
	}
	if cfg.Portfolio.DefaultCluster == "" {
		cfg.Portfolio.DefaultCluster = "devnet"
	}
	if cfg.Portfolio.FetchTimeoutMs <= 0 {
		cfg.Portfolio.FetchTimeoutMs = 30000
	}

	if cfg.RpcClient.DefaultTimeoutMs <= 0 {
		cfg.RpcClient.DefaultTimeoutMs = 10000
	}
	if cfg.RpcClient.RateLimit > 0 && cfg.RpcClient.BurstLimit <= 0 {
		cfg.RpcClient.BurstLimit = cfg.RpcClient.RateLimit
	}

	if cfg.TokenList.URL == "" {
		cfg.TokenList.URL = DefaultTokenListURL
		logrus.Infof("TokenList.URL not set, defaulting to %s", cfg.TokenList.URL)
	}
	if cfg.TokenList.RequestTimeoutMillis <= 0 {
		cfg.TokenList.RequestTimeoutMillis = 30000 // the list is several MB
	}

	if cfg.MetadataStore.Backend == "" {
		cfg.MetadataStore.Backend = "file"
	}
	cfg.MetadataStore.Backend = strings.ToLower(cfg.MetadataStore.Backend)
	if cfg.MetadataStore.Dir == "" {
		cfg.MetadataStore.Dir = "data/cache"
	}
	if cfg.MetadataStore.Key == "" {
		cfg.MetadataStore.Key = DefaultMetadataStoreKey
	}
	if cfg.MetadataStore.Backend == "redis" && cfg.MetadataStore.Redis.Addr == "" {
		cfg.MetadataStore.Redis.Addr = "127.0.0.1:6379"
		logrus.Infof("MetadataStore.Redis.Addr not set, defaulting to %s", cfg.MetadataStore.Redis.Addr)
	}

	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

// Validate rejects configurations the service cannot start with.
func (cfg *Config) Validate() error {
	switch cfg.MetadataStore.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unsupported metadataStore.backend %q", cfg.MetadataStore.Backend)
	}
	if cfg.RpcClient.RateLimit < 0 {
		return fmt.Errorf("rpcClient.rateLimit must not be negative, got %d", cfg.RpcClient.RateLimit)
	}
	return nil
}
