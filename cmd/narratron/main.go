package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/narratron/narratron/internal/agent"
	"github.com/narratron/narratron/internal/config"
	"github.com/narratron/narratron/internal/generator"
	"github.com/narratron/narratron/internal/server"
	"github.com/narratron/narratron/internal/storage"
	"github.com/narratron/narratron/internal/story"
	"github.com/narratron/narratron/internal/tts"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: NARRATRON_CONFIG or built-in defaults)")
	flag.Parse()

	logger := newLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	bank := story.Default()
	if cfg.Generation.BankPath != "" {
		bank, err = story.Load(cfg.Generation.BankPath)
		if err != nil {
			logger.Error("template bank invalid", "error", err)
			os.Exit(1)
		}
	}

	hostedClient := agent.NewClient(
		cfg.Generation.Hosted.APIKey,
		cfg.Generation.Hosted.BaseURL,
		cfg.Generation.Hosted.Model,
		agent.WithTimeout(cfg.Generation.Hosted.Timeout),
		agent.WithRateLimit(cfg.Generation.Hosted.RateLimit.RequestsPerMinute, cfg.Generation.Hosted.RateLimit.BurstSize),
		agent.WithLogger(logger),
	)
	localClient := agent.NewLocalClient(cfg.Generation.Local.BaseURL, cfg.Generation.Local.Timeout, logger)

	hosted := generator.NewHostedStrategy(hostedClient, logger)
	local := generator.NewLocalStrategy(localClient, logger)
	template := generator.NewTemplateStrategy(story.NewComposer(bank, logger), logger)
	selector := generator.NewSelector(
		[]generator.Strategy{hosted, local},
		template,
		cfg.Presets(),
		logger,
	)

	store := storage.NewFileSystem(cfg.Server.AudioDir)
	narrator := tts.NewHandler(store, logger,
		tts.NewGoogleSynthesizer(cfg.TTS.GoogleURL, cfg.TTS.Lang, cfg.TTS.Timeout, logger),
		tts.NewEspeakSynthesizer(cfg.TTS.Voice, logger),
	)

	health := func(ctx context.Context) map[string]bool {
		return map[string]bool{
			hosted.Name():   hosted.Available(ctx),
			local.Name():    local.Available(ctx),
			template.Name(): template.Available(ctx),
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupLoop(ctx, store, cfg.TTS.CleanupAge, logger)

	srv := server.New(server.Options{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		DefaultDuration: cfg.Generation.DefaultDuration,
	}, selector, narrator, store, health, logger)

	if err := srv.Run(ctx, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// cleanupLoop drops audio artifacts past their retention age. Narrations are
// one-shot; nothing references them after playback.
func cleanupLoop(ctx context.Context, store *storage.FileSystem, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Cleanup(ctx, "cuento_*", maxAge)
			if err != nil {
				logger.Warn("artifact cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("removed stale audio artifacts", "count", removed)
			}
		}
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("NARRATRON_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
