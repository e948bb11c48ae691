package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yavens/rig-chat-client/internal/backend"
	"github.com/yavens/rig-chat-client/internal/broadcast"
	"github.com/yavens/rig-chat-client/internal/config"
	"github.com/yavens/rig-chat-client/internal/conversation"
	"github.com/yavens/rig-chat-client/internal/httpapi"
	"github.com/yavens/rig-chat-client/internal/observability"
	"github.com/yavens/rig-chat-client/internal/render"
	"github.com/yavens/rig-chat-client/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	renderer, err := render.New()
	if err != nil {
		log.Fatalf("renderer init failed: %v", err)
	}

	var (
		completer   stream.Completer
		synthesizer stream.Synthesizer
		transcriber httpapi.Transcriber
		tools       []stream.Tool
	)

	provider := strings.ToLower(strings.TrimSpace(cfg.BackendProvider))
	if provider == "" {
		provider = "auto"
	}

	useOpenAI := func() {
		client := backend.New(backend.Config{
			APIKey:             cfg.OpenAIAPIKey,
			CompletionModel:    cfg.OpenAICompletionModel,
			TTSModel:           cfg.OpenAITTSModel,
			TTSVoice:           cfg.OpenAITTSVoice,
			TranscriptionModel: cfg.OpenAITranscriptionModel,
			ImageModel:         cfg.OpenAIImageModel,
			ImageSize:          cfg.OpenAIImageSize,
			ImageDir:           cfg.ImageDir,
		})
		tools = []stream.Tool{client.ImageTool()}
		client.RegisterTools(stream.Definitions(tools))
		completer = client
		synthesizer = client
		transcriber = client
		log.Printf("backend provider: openai (%s)", cfg.OpenAICompletionModel)
	}

	useMock := func(reason string) {
		completer = stream.NewMockCompleter()
		synthesizer = stream.NewMockSynthesizer()
		transcriber = stream.NewMockTranscriber()
		tools = []stream.Tool{stream.NewMockImageTool()}
		log.Printf("backend provider: mock (%s)", reason)
	}

	switch provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("BACKEND_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		useOpenAI()
	case "mock":
		useMock("requested")
	case "auto":
		if cfg.OpenAIAPIKey != "" {
			useOpenAI()
		} else {
			useMock("no OPENAI_API_KEY")
		}
	default:
		log.Fatalf("invalid BACKEND_PROVIDER: %q (expected auto|openai|mock)", cfg.BackendProvider)
	}
	cfg.BackendProvider = provider

	store := conversation.NewStore()
	broadcaster := broadcast.New(metrics)

	coordinator := stream.NewCoordinator(stream.Params{
		Store:         store,
		Broadcaster:   broadcaster,
		Renderer:      renderer,
		Completer:     completer,
		Synthesizer:   synthesizer,
		Tools:         tools,
		Metrics:       metrics,
		FlushInterval: cfg.FlushInterval,
	})

	api := httpapi.New(cfg, coordinator, broadcaster, renderer, transcriber, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
