package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.SpeechMaxChunkLen != 200 || cfg.TranslateMaxChunkLen != 500 || cfg.TranslateThreshold != 500 {
		t.Errorf("chunking defaults = %d/%d/%d",
			cfg.SpeechMaxChunkLen, cfg.TranslateThreshold, cfg.TranslateMaxChunkLen)
	}
	if cfg.GatewayTimeout != 8*time.Second || cfg.GatewayRetries != 1 || cfg.RequestsPerMinute != 60 {
		t.Errorf("gateway defaults = %v/%d/%d",
			cfg.GatewayTimeout, cfg.GatewayRetries, cfg.RequestsPerMinute)
	}
	if cfg.PrimaryEndpoint == "" || cfg.TertiaryEndpoint == "" {
		t.Error("provider endpoint defaults missing")
	}
	if cfg.SecondaryEndpoint != "" {
		t.Errorf("SecondaryEndpoint = %q, want unset by default", cfg.SecondaryEndpoint)
	}
}

func TestLoadViperOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("speechcore.log_level", "debug")
	viper.Set("speechcore.translate.chunk_len", 250)
	viper.Set("speechcore.gateway.timeout", "3s")
	viper.Set("speechcore.providers.secondary", "https://internal.example/tx")
	viper.Set("speechcore.providers.secondary_api_key", "k9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.TranslateMaxChunkLen != 250 {
		t.Errorf("TranslateMaxChunkLen = %d", cfg.TranslateMaxChunkLen)
	}
	if cfg.GatewayTimeout != 3*time.Second {
		t.Errorf("GatewayTimeout = %v", cfg.GatewayTimeout)
	}
	if cfg.SecondaryEndpoint != "https://internal.example/tx" || cfg.SecondaryAPIKey != "k9" {
		t.Errorf("secondary provider = %q/%q", cfg.SecondaryEndpoint, cfg.SecondaryAPIKey)
	}
	// Untouched keys keep their defaults.
	if cfg.SpeechMaxChunkLen != 200 {
		t.Errorf("SpeechMaxChunkLen = %d, want default", cfg.SpeechMaxChunkLen)
	}
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("speechcore.log_level", "debug")
	t.Setenv("SPEECHCORE_LOG_LEVEL", "warn")
	t.Setenv("SPEECHCORE_GATEWAY_RETRIES", "4")
	t.Setenv("SPEECHCORE_CACHE_DIR", "/tmp/speechcore-cache")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want environment to win", cfg.LogLevel)
	}
	if cfg.GatewayRetries != 4 {
		t.Errorf("GatewayRetries = %d", cfg.GatewayRetries)
	}
	if cfg.CacheDir != "/tmp/speechcore-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
}
