package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the service.
type Config struct {
	ListenAddr  string
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int

	// RefreshInterval drives the periodic change broadcast that makes
	// connected clients re-fetch their lists.
	RefreshInterval time.Duration

	// InitialLoadTimeout bounds the first task-list fetch of a view.
	InitialLoadTimeout time.Duration
}

// Load reads configuration from DAYLIST_* environment variables with sane defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("daylist")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("database_url", "daylist.db")
	v.SetDefault("token_ttl", "720h")
	v.SetDefault("llm_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("llm_temperature", 0.7)
	v.SetDefault("llm_max_tokens", 512)
	v.SetDefault("refresh_interval", "5m")
	v.SetDefault("initial_load_timeout", "10s")

	cfg := Config{
		ListenAddr:         strings.TrimSpace(v.GetString("listen_addr")),
		DatabaseURL:        strings.TrimSpace(v.GetString("database_url")),
		JWTSecret:          strings.TrimSpace(v.GetString("jwt_secret")),
		TokenTTL:           v.GetDuration("token_ttl"),
		LLMAPIKey:          strings.TrimSpace(v.GetString("llm_api_key")),
		LLMBaseURL:         strings.TrimSpace(v.GetString("llm_base_url")),
		LLMModel:           strings.TrimSpace(v.GetString("llm_model")),
		LLMTemperature:     v.GetFloat64("llm_temperature"),
		LLMMaxTokens:       v.GetInt("llm_max_tokens"),
		RefreshInterval:    v.GetDuration("refresh_interval"),
		InitialLoadTimeout: v.GetDuration("initial_load_timeout"),
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("DAYLIST_JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 720 * time.Hour
	}
	if cfg.InitialLoadTimeout <= 0 {
		cfg.InitialLoadTimeout = 10 * time.Second
	}

	return cfg, nil
}
