package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/coursewise/coursewise/pkg/logging"
)

// Config holds all coursewise configuration.
type Config struct {
	Listen    string          `yaml:"listen" validate:"required"`
	DBPath    string          `yaml:"db_path" validate:"required"`
	Log       logging.Config  `yaml:"log"`
	Assistant AssistantConfig `yaml:"assistant"`
	Cache     CacheConfig     `yaml:"cache"`
	Budget    BudgetConfig    `yaml:"budget"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// AssistantConfig defines the upstream model used for recommendations and chat.
// Provider is "openai" (default), "anthropic" or "gemini". An empty URL
// selects the provider's public endpoint.
type AssistantConfig struct {
	Provider           string        `yaml:"provider" validate:"omitempty,oneof=openai anthropic gemini"`
	URL                string        `yaml:"url" validate:"omitempty,url"`
	APIKey             string        `yaml:"api_key"`
	Model              string        `yaml:"model" validate:"required"`
	Temperature        float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	RecommendMaxTokens int           `yaml:"recommend_max_tokens" validate:"gt=0"`
	ChatMaxTokens      int           `yaml:"chat_max_tokens" validate:"gt=0"`
	Timeout            time.Duration `yaml:"timeout" validate:"gt=0"`
	Breaker            BreakerConfig `yaml:"breaker"`
}

// BreakerConfig controls the circuit breaker around model calls.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

// CacheConfig controls the prompt cache.
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl" validate:"gt=0"`
	Capacity int           `yaml:"capacity" validate:"gt=0"`
}

// BudgetConfig sets the process-wide ceiling on model calls.
type BudgetConfig struct {
	Limit int `yaml:"limit" validate:"gt=0"`
}

// AuthConfig controls bearer-token verification. An empty secret disables
// authentication and every caller is anonymous.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// RateLimitConfig throttles assistant endpoints per client IP.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests" validate:"gte=0"`
	Window   time.Duration `yaml:"window" validate:"gte=0"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":5000",
		DBPath: "coursewise.db",
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Assistant: AssistantConfig{
			Provider:           "openai",
			Model:              "gpt-3.5-turbo",
			Temperature:        0.7,
			RecommendMaxTokens: 1000,
			ChatMaxTokens:      300,
			Timeout:            30 * time.Second,
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				OpenTimeout:      time.Minute,
			},
		},
		Cache: CacheConfig{
			TTL:      time.Hour,
			Capacity: 50,
		},
		Budget: BudgetConfig{
			Limit: 250,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 30,
			Window:   time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load reads a YAML config file, expands environment variables and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
