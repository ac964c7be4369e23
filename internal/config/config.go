package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all service configuration. It is built once at startup and
// passed to every component that needs it.
type Config struct {
	Debug    bool           `mapstructure:"debug"`
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Minio    MinioConfig    `mapstructure:"minio"`
	LLM      LLMConfig      `mapstructure:"llm"`
	CaseLaw  CaseLawConfig  `mapstructure:"caselaw"`
	Research ResearchConfig `mapstructure:"research"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LLMConfig selects and parameterizes the generative-text backend.
// An empty APIKey is allowed; the analyzer then answers with a fixed
// "not configured" message.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float64       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Jurisdiction string        `mapstructure:"jurisdiction"`
}

// CaseLawConfig configures the Indian Kanoon search client.
type CaseLawConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	DocBaseURL string        `mapstructure:"doc_base_url"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type ResearchConfig struct {
	HistoryLimit int `mapstructure:"history_limit"`
}

type AuthConfig struct {
	Required   bool          `mapstructure:"required"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// envBindings maps config keys to the environment variables that may set
// them, in order of precedence.
var envBindings = map[string][]string{
	"debug":                  {"DEBUG"},
	"server.port":            {"PORT"},
	"server.cors_origins":    {"CORS_ORIGINS"},
	"mongo.uri":              {"MONGO_URL", "MONGO_URI"},
	"mongo.database":         {"DB_NAME", "MONGO_DB"},
	"postgres.dsn":           {"POSTGRES_DSN"},
	"redis.addr":             {"REDIS_ADDR"},
	"redis.password":         {"REDIS_PASSWORD"},
	"minio.endpoint":         {"MINIO_ENDPOINT"},
	"minio.access_key":       {"MINIO_ACCESS_KEY"},
	"minio.secret_key":       {"MINIO_SECRET_KEY"},
	"minio.bucket":           {"MINIO_BUCKET"},
	"minio.use_ssl":          {"MINIO_USE_SSL"},
	"llm.provider":           {"LLM_PROVIDER"},
	"llm.api_key":            {"LLM_API_KEY"},
	"llm.openai_api_key":     {"OPENAI_API_KEY"},
	"llm.gemini_api_key":     {"GEMINI_API_KEY"},
	"llm.base_url":           {"LLM_BASE_URL"},
	"llm.model":              {"LLM_MODEL"},
	"llm.max_tokens":         {"LLM_MAX_TOKENS"},
	"llm.temperature":        {"LLM_TEMPERATURE"},
	"llm.timeout":            {"LLM_TIMEOUT"},
	"llm.jurisdiction":       {"LLM_JURISDICTION"},
	"caselaw.api_key":        {"INDIAN_KANOON_API_KEY"},
	"caselaw.base_url":       {"CASELAW_BASE_URL"},
	"caselaw.max_results":    {"CASELAW_MAX_RESULTS"},
	"caselaw.timeout":        {"CASELAW_TIMEOUT"},
	"research.history_limit": {"RESEARCH_HISTORY_LIMIT"},
	"auth.required":          {"AUTH_REQUIRED"},
	"auth.session_ttl":       {"SESSION_TTL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 5*time.Minute)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "legalsuite")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("minio.endpoint", "minio:9000")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "legal-documents")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.jurisdiction", "Indian")
	v.SetDefault("caselaw.api_key", "")
	v.SetDefault("caselaw.base_url", "https://api.indiankanoon.org/search/")
	v.SetDefault("caselaw.doc_base_url", "https://indiankanoon.org/doc/")
	v.SetDefault("caselaw.max_results", 10)
	v.SetDefault("caselaw.timeout", 30*time.Second)
	v.SetDefault("research.history_limit", 100)
	v.SetDefault("auth.required", false)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. When path is empty, ./legalsuite.yaml is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("legalsuite")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.APIKey == "" {
		// LLM_API_KEY wins; otherwise read the selected provider's own key.
		cfg.LLM.APIKey = v.GetString("llm." + cfg.LLM.Provider + "_api_key")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make the service misbehave. A missing
// LLM credential is deliberately not an error.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be > 0")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}
	if c.CaseLaw.MaxResults <= 0 {
		return fmt.Errorf("caselaw.max_results must be > 0")
	}
	if c.Research.HistoryLimit <= 0 {
		return fmt.Errorf("research.history_limit must be > 0")
	}
	return nil
}
