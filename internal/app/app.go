// Package app wires configuration, stores, collaborators and handlers
// into a runnable server.
package app

import (
	"context"
	"fmt"
	"log"

	"pulseboard/internal/agent"
	"pulseboard/internal/archive"
	"pulseboard/internal/config"
	"pulseboard/internal/document"
	"pulseboard/internal/handler"
	"pulseboard/internal/history"
	"pulseboard/internal/llm"
	"pulseboard/internal/server"
	"pulseboard/internal/session"
	"pulseboard/internal/stream"
	"pulseboard/internal/tools"
	"pulseboard/internal/weather"
)

type App struct {
	server *server.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Stores
	historyStore := history.NewFromEnv()
	docs, err := session.NewDocStore(session.DefaultMaxConversations)
	if err != nil {
		return nil, fmt.Errorf("failed to init document store: %w", err)
	}

	// Collaborators
	var archiveStore agent.Archiver
	if cfg.Archive.Enabled {
		store, err := archive.New(archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			log.Printf("upload archive disabled: %v", err)
		} else {
			archiveStore = store
		}
	}

	var weatherClient tools.WeatherLookup
	if cfg.Weather.APIKey != "" {
		weatherClient = weather.New(cfg.Weather.APIKey)
	}

	var streamManager *stream.Manager
	if cfg.Stream.Enabled {
		streamManager = stream.NewManager(
			stream.NewClient(cfg.Stream.ControlURL, cfg.Stream.User, cfg.Stream.Password),
			cfg.Stream.HLSBase,
			cfg.Stream.WebRTCBase,
		)
	}

	registry := tools.NewRegistry()
	tools.RegisterDefaultTools(registry)

	hub := handler.NewHub()

	catalog := llm.Catalog{
		GeminiAPIKey:    cfg.LLM.GeminiAPIKey,
		GeminiModel:     cfg.LLM.GeminiModel,
		OpenAIAPIKey:    cfg.LLM.OpenAIAPIKey,
		OpenAIModel:     cfg.LLM.OpenAIModel,
		AnthropicAPIKey: cfg.LLM.AnthropicAPIKey,
		AnthropicModel:  cfg.LLM.AnthropicModel,
	}

	pipeline := &agent.Agent{
		Catalog: catalog,
		History: historyStore,
		Docs:    docs,
		Tools:   registry,
		Weather: weatherClient,
		Archive: archiveStore,
		Notify:  hub.Publish,
	}

	summarize := func(ctx context.Context, filename string, doc *document.Structured) (string, error) {
		client, err := catalog.Resolve(ctx, "")
		if err != nil {
			return "", err
		}
		return tools.Summarize(ctx, client, filename, doc)
	}

	// Routing & Server
	mux := server.NewMux(
		handler.NewWidgetsHandler(pipeline, historyStore, docs),
		handler.NewDocumentsHandler(docs, archiveStore, summarize),
		handler.NewWeatherHandler(weatherClient),
		handler.NewStreamsHandler(streamManager),
		handler.NewFeedHandler(hub),
	)
	srv := server.New(cfg.Port, mux)

	return &App{server: srv}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
