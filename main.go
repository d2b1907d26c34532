// Package main provides the speechcore command line interface: a thin host
// around the speech-output and translation core, useful for exercising the
// pipeline against real services.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/overlaykit/speechcore/config"
	"github.com/overlaykit/speechcore/gateway"
	"github.com/overlaykit/speechcore/internal/cache"
	"github.com/overlaykit/speechcore/speech"
	"github.com/overlaykit/speechcore/translate"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	sourceLang string
	targetLang string
	outDir     string
	muted      bool

	rootCmd = &cobra.Command{
		Use:               "speechcore",
		Short:             "Read text aloud and translate it through unreliable backends",
		SilenceErrors:     false,
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return setup() },
	}

	speakCmd = &cobra.Command{
		Use:   "speak [SOURCE]",
		Short: "Generate speech audio for a text file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSpeak,
	}

	translateCmd = &cobra.Command{
		Use:   "translate [SOURCE]",
		Short: "Translate a text file (or stdin) through the provider waterfall",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTranslate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file to use")
	speakCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for generated audio chunks")
	speakCmd.Flags().BoolVar(&muted, "muted", false, "run with the muted preference set")
	translateCmd.Flags().StringVar(&sourceLang, "from", "en", "source language")
	translateCmd.Flags().StringVar(&targetLang, "to", "", "target language (required)")
	translateCmd.MarkFlagRequired("to") //nolint:errcheck
	rootCmd.AddCommand(speakCmd, translateCmd)
	rootCmd.Version = Version
}

func setup() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, "speechcore"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("speechcore")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("speechcore")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && configFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Debug("using configuration file", "path", viper.ConfigFileUsed())
	}
	return nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return cfg, nil
}

// readSource reads the text to process from a file argument, "-", or stdin.
func readSource(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func newCache(cfg config.Config) *cache.Manager {
	cacheCfg := &cache.Config{
		MemoryCapacity: cfg.CacheMemoryBytes,
		DiskPath:       cfg.CacheDir,
		DiskCapacity:   cfg.CacheDiskBytes,
	}
	manager, err := cache.NewManager(cacheCfg)
	if err != nil {
		log.Warn("cache disabled", "err", err)
		return nil
	}
	return manager
}

func runSpeak(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	text, err := readSource(args)
	if err != nil {
		return err
	}

	client := gateway.NewClient(gateway.Config{
		Timeout:           cfg.GatewayTimeout,
		Retries:           cfg.GatewayRetries,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	sink := &fileSink{client: client, dir: outDir}
	backend := speech.NewRemoteBackend(cfg.RemoteSpeechEndpoint, client, sink, nil, newCache(cfg))
	prefs := &speech.StaticPreferences{Language: cfg.ContentLanguage, Mute: muted}

	controller := speech.NewController(backend, prefs, speech.Config{
		MaxChunkLen: cfg.SpeechMaxChunkLen,
	})

	done := make(chan speech.SessionInfo, 1)
	controller.OnStateChange(func(info speech.SessionInfo) {
		log.Info("speech state", "status", info.Status, "chunks", info.TotalChunks)
		if info.Status.Terminal() {
			select {
			case done <- info:
			default:
			}
		}
	})
	controller.OnChunkChange(func(cursor int) {
		log.Info("chunk", "cursor", cursor)
	})
	controller.OnError(func(err error) {
		log.Warn("playback", "err", err)
	})

	if err := controller.Speak(text); err != nil {
		return err
	}
	if controller.Status() == speech.StatusIdle {
		log.Info("muted; nothing to do")
		return nil
	}

	info := <-done
	if info.Status == speech.StatusError {
		return errors.New("speech session failed")
	}
	log.Info("speech finished", "status", info.Status)
	return nil
}

func runTranslate(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	text, err := readSource(args)
	if err != nil {
		return err
	}

	client := gateway.NewClient(gateway.Config{
		Timeout:           cfg.GatewayTimeout,
		Retries:           cfg.GatewayRetries,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})

	var providers []translate.Provider
	if cfg.PrimaryEndpoint != "" {
		providers = append(providers, &translate.OpenTranslator{Endpoint: cfg.PrimaryEndpoint})
	}
	if cfg.SecondaryEndpoint != "" {
		providers = append(providers, &translate.CustomBackend{
			Endpoint: cfg.SecondaryEndpoint,
			APIKey:   cfg.SecondaryAPIKey,
		})
	}
	if cfg.TertiaryEndpoint != "" {
		providers = append(providers, &translate.PublicFallback{Endpoint: cfg.TertiaryEndpoint})
	}
	if len(providers) == 0 {
		return errors.New("no translation providers configured")
	}

	orchestrator := translate.NewOrchestrator(
		translate.NewWaterfall(client, providers),
		newCache(cfg),
		translate.Config{
			ChunkThreshold: cfg.TranslateThreshold,
			MaxChunkLen:    cfg.TranslateMaxChunkLen,
		},
	)
	orchestrator.OnStarted(func(target string) {
		log.Info("translation started", "target", target)
	})
	orchestrator.OnFinished(func(target string, err error) {
		log.Info("translation finished", "target", target, "failed", err != nil)
	})

	result, err := orchestrator.Translate(context.Background(), text, sourceLang, targetLang)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	fmt.Println(result)
	return nil
}

// fileSink writes each generated audio resource to a numbered file instead
// of playing it; the CLI has no audio device of its own.
type fileSink struct {
	client *gateway.Client
	dir    string
	n      int
}

func (s *fileSink) PlayURL(ctx context.Context, url string) error {
	data, err := s.client.Do(ctx, gateway.RequestSpec{Method: "GET", URL: url})
	if err != nil {
		return fmt.Errorf("fetch audio: %w", err)
	}
	name := filepath.Join(s.dir, fmt.Sprintf("chunk-%03d.mp3", s.n))
	s.n++
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	log.Info("audio chunk saved", "path", name, "bytes", len(data))
	return nil
}

func (s *fileSink) Stop() {}

func main() {
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
