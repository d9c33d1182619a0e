package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cannery   CanneryConfig   `yaml:"cannery"`
	Generator GeneratorConfig `yaml:"generator"`
	Transport TransportConfig `yaml:"transport"`
	Drafts    DraftsConfig    `yaml:"drafts"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds Redis settings for the contact log. When disabled the
// app falls back to an in-memory contact log, which is fine for a single
// instance.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CanneryConfig holds the price source settings.
type CanneryConfig struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GeneratorConfig selects and configures the draft generator backend.
// Provider is one of anthropic, bedrock or template. The template backend
// is also the automatic fallback when an AI backend fails.
type GeneratorConfig struct {
	Provider        string `yaml:"provider"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	BedrockRegion   string `yaml:"bedrock_region"`
	BedrockModelID  string `yaml:"bedrock_model_id"`
	AWSAccessKey    string `yaml:"aws_access_key"`
	AWSSecretKey    string `yaml:"aws_secret_key"`
	Template        string `yaml:"template"`
}

// TransportConfig holds SES email-to-SMS delivery settings.
type TransportConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	FromEmail string `yaml:"from_email"`
}

// DraftsConfig tunes the generation batch.
type DraftsConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Cannery.Name == "" {
		cfg.Cannery.Name = "Pacific Seafood"
	}
	if cfg.Cannery.TimeoutSeconds == 0 {
		cfg.Cannery.TimeoutSeconds = 10
	}
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = "template"
	}
	if cfg.Transport.Region == "" {
		cfg.Transport.Region = "us-west-2"
	}
	if cfg.Drafts.Concurrency == 0 {
		cfg.Drafts.Concurrency = 4
	}

	return &cfg, nil
}

// LoadFromEnv loads the YAML config and overrides secrets from the
// environment. A .env file is honored if present.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.Generator.AnthropicAPIKey = key
	}
	if key := os.Getenv("AWS_ACCESS_KEY"); key != "" {
		cfg.Generator.AWSAccessKey = key
		cfg.Transport.AccessKey = key
	}
	if key := os.Getenv("AWS_SECRET_KEY"); key != "" {
		cfg.Generator.AWSSecretKey = key
		cfg.Transport.SecretKey = key
	}
	if url := os.Getenv("CANNERY_URL"); url != "" {
		cfg.Cannery.URL = url
	}
	if from := os.Getenv("SES_FROM_EMAIL"); from != "" {
		cfg.Transport.FromEmail = from
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	return cfg, nil
}
