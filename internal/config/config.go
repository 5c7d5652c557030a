package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment  string
	FunctionName string
	Release      string

	SentryDSN        string
	SentrySampleRate string

	DatabaseURL string

	SupabaseURL       string
	SupabaseJWTSecret string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string

	Port string

	Observability ObservabilityConfig
}

type ObservabilityConfig struct {
	Runtime      string        `yaml:"runtime"`
	Deployment   string        `yaml:"deployment"`
	FlushTimeout time.Duration `yaml:"flush_timeout"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment:              os.Getenv("ENVIRONMENT"),
		FunctionName:             os.Getenv("FUNCTION_NAME"),
		Release:                  os.Getenv("GIT_COMMIT_SHA"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		SentrySampleRate:         os.Getenv("SENTRY_SAMPLE_RATE"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		SupabaseURL:              os.Getenv("SUPABASE_URL"),
		SupabaseJWTSecret:        os.Getenv("SUPABASE_JWT_SECRET"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		Port:                     os.Getenv("PORT"),
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Observability ObservabilityConfig `yaml:"observability"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Observability.Runtime != "" {
		c.Observability.Runtime = yamlConfig.Observability.Runtime
	}
	if yamlConfig.Observability.Deployment != "" {
		c.Observability.Deployment = yamlConfig.Observability.Deployment
	}
	if yamlConfig.Observability.FlushTimeout > 0 {
		c.Observability.FlushTimeout = yamlConfig.Observability.FlushTimeout
	}

	return nil
}

func (c *Config) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.FunctionName == "" {
		c.FunctionName = "edge-function"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Observability.Runtime == "" {
		c.Observability.Runtime = "go"
	}
	if c.Observability.Deployment == "" {
		c.Observability.Deployment = "supabase-edge"
	}
	if c.Observability.FlushTimeout <= 0 {
		c.Observability.FlushTimeout = 2 * time.Second
	}
}

// OTLPHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OTLPHeaders() (map[string]string, error) {
	headers := map[string]string{}
	if strings.TrimSpace(c.OtelExporterOTLPHeaders) == "" {
		return headers, nil
	}

	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid OTEL_EXPORTER_OTLP_HEADERS entry %q", pair)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

// AuthEnabled reports whether incoming requests must carry a Supabase JWT.
func (c *Config) AuthEnabled() bool {
	return c.SupabaseJWTSecret != ""
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AuthEnabled() && c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required when SUPABASE_JWT_SECRET is set")
	}
	if _, err := c.OTLPHeaders(); err != nil {
		return err
	}
	return nil
}
