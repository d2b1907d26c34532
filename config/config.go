// Package config loads overlay speech/translation settings from the
// configuration file (via viper) with environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// Config holds every tunable of the speech/translation core.
type Config struct {
	LogLevel        string `env:"SPEECHCORE_LOG_LEVEL"`
	ContentLanguage string `env:"SPEECHCORE_CONTENT_LANG"`

	// Chunking
	SpeechMaxChunkLen    int `env:"SPEECHCORE_SPEECH_CHUNK_LEN"`
	TranslateThreshold   int `env:"SPEECHCORE_TRANSLATE_THRESHOLD"`
	TranslateMaxChunkLen int `env:"SPEECHCORE_TRANSLATE_CHUNK_LEN"`

	// Gateway
	GatewayTimeout    time.Duration `env:"SPEECHCORE_GATEWAY_TIMEOUT"`
	GatewayRetries    int           `env:"SPEECHCORE_GATEWAY_RETRIES"`
	RequestsPerMinute int           `env:"SPEECHCORE_REQUESTS_PER_MINUTE"`

	// Translation providers, in fixed priority order.
	PrimaryEndpoint   string `env:"SPEECHCORE_PRIMARY_ENDPOINT"`
	SecondaryEndpoint string `env:"SPEECHCORE_SECONDARY_ENDPOINT"`
	SecondaryAPIKey   string `env:"SPEECHCORE_SECONDARY_API_KEY"`
	TertiaryEndpoint  string `env:"SPEECHCORE_TERTIARY_ENDPOINT"`

	// Remote audio generation
	RemoteSpeechEndpoint string `env:"SPEECHCORE_REMOTE_SPEECH_ENDPOINT"`

	// Caching
	CacheDir         string `env:"SPEECHCORE_CACHE_DIR"`
	CacheMemoryBytes int64  `env:"SPEECHCORE_CACHE_MEMORY_BYTES"`
	CacheDiskBytes   int64  `env:"SPEECHCORE_CACHE_DISK_BYTES"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:             "info",
		ContentLanguage:      "en",
		SpeechMaxChunkLen:    200,
		TranslateThreshold:   500,
		TranslateMaxChunkLen: 500,
		GatewayTimeout:       8 * time.Second,
		GatewayRetries:       1,
		RequestsPerMinute:    60,
		PrimaryEndpoint:      "https://libretranslate.de/translate",
		TertiaryEndpoint:     "https://api.mymemory.translated.net/get",
		CacheMemoryBytes:     8 << 20,
		CacheDiskBytes:       64 << 20,
	}
}

// Load builds the configuration: defaults, then any values set in the viper
// configuration file, then environment overrides.
func Load() (Config, error) {
	cfg := Default()
	fromViper(&cfg)
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func fromViper(cfg *Config) {
	if viper.IsSet("speechcore.log_level") {
		cfg.LogLevel = viper.GetString("speechcore.log_level")
	}
	if viper.IsSet("speechcore.content_language") {
		cfg.ContentLanguage = viper.GetString("speechcore.content_language")
	}
	if viper.IsSet("speechcore.speech.chunk_len") {
		cfg.SpeechMaxChunkLen = viper.GetInt("speechcore.speech.chunk_len")
	}
	if viper.IsSet("speechcore.translate.threshold") {
		cfg.TranslateThreshold = viper.GetInt("speechcore.translate.threshold")
	}
	if viper.IsSet("speechcore.translate.chunk_len") {
		cfg.TranslateMaxChunkLen = viper.GetInt("speechcore.translate.chunk_len")
	}
	if viper.IsSet("speechcore.gateway.timeout") {
		cfg.GatewayTimeout = viper.GetDuration("speechcore.gateway.timeout")
	}
	if viper.IsSet("speechcore.gateway.retries") {
		cfg.GatewayRetries = viper.GetInt("speechcore.gateway.retries")
	}
	if viper.IsSet("speechcore.gateway.requests_per_minute") {
		cfg.RequestsPerMinute = viper.GetInt("speechcore.gateway.requests_per_minute")
	}
	if viper.IsSet("speechcore.providers.primary") {
		cfg.PrimaryEndpoint = viper.GetString("speechcore.providers.primary")
	}
	if viper.IsSet("speechcore.providers.secondary") {
		cfg.SecondaryEndpoint = viper.GetString("speechcore.providers.secondary")
	}
	if viper.IsSet("speechcore.providers.secondary_api_key") {
		cfg.SecondaryAPIKey = viper.GetString("speechcore.providers.secondary_api_key")
	}
	if viper.IsSet("speechcore.providers.tertiary") {
		cfg.TertiaryEndpoint = viper.GetString("speechcore.providers.tertiary")
	}
	if viper.IsSet("speechcore.speech.remote_endpoint") {
		cfg.RemoteSpeechEndpoint = viper.GetString("speechcore.speech.remote_endpoint")
	}
	if viper.IsSet("speechcore.cache.dir") {
		cfg.CacheDir = viper.GetString("speechcore.cache.dir")
	}
	if viper.IsSet("speechcore.cache.memory_bytes") {
		cfg.CacheMemoryBytes = viper.GetInt64("speechcore.cache.memory_bytes")
	}
	if viper.IsSet("speechcore.cache.disk_bytes") {
		cfg.CacheDiskBytes = viper.GetInt64("speechcore.cache.disk_bytes")
	}
}
