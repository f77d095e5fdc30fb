package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"pdf-rag-chat/internal/config"
	"pdf-rag-chat/internal/embedding"
	"pdf-rag-chat/internal/helper"
	"pdf-rag-chat/internal/llmservice"
	"pdf-rag-chat/internal/loader"
	"pdf-rag-chat/internal/rag"
	"pdf-rag-chat/internal/store"
	"pdf-rag-chat/internal/store/chromem"
	"pdf-rag-chat/internal/store/pgvector"
	"pdf-rag-chat/internal/store/qdrant"
	"pdf-rag-chat/internal/tui"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	query := flag.String("query", "", "Ask a single question and exit instead of starting the chat")
	rebuild := flag.Bool("rebuild", false, "Force re-ingestion even if the store already has data")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// run owns the store lifetime; exiting through it instead of
	// log.Fatal lets the deferred Close fire on every failure path
	if err := run(context.Background(), *configPath, *query, *rebuild); err != nil {
		log.Error().Err(err).Msg("Fatal error")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, query string, rebuild bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	st, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer st.Close()

	embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return fmt.Errorf("initializing embedder: %w", err)
	}

	chatModel, err := llmservice.NewOllamaLLM(&cfg.ChatLLM)
	if err != nil {
		return fmt.Errorf("initializing chat model: %w", err)
	}

	var visionModel llms.Model
	if needsVision(cfg.Sources) {
		visionModel, err = llmservice.NewOllamaLLM(&cfg.VisionLLM)
		if err != nil {
			return fmt.Errorf("initializing vision model: %w", err)
		}
	}

	pipeline := rag.New(st, embedder, chatModel, cfg)

	// a populated store is reused as-is unless -rebuild was given, so
	// loading can be skipped entirely in that case
	count, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("reading vector store: %w", err)
	}
	if count == 0 || rebuild {
		pages, err := loader.New(visionModel).Load(ctx, cfg.Sources)
		if err != nil {
			return fmt.Errorf("loading documents: %w", err)
		}
		if err := pipeline.Ingest(ctx, pages, rebuild); err != nil {
			return fmt.Errorf("ingesting documents: %w", err)
		}
	} else {
		log.Info().Int("chunks", count).Msg("Reusing existing vector store")
	}

	if query != "" {
		answer, err := pipeline.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("querying: %w", err)
		}
		fmt.Printf("%s\n\n", answer.Content)
		helper.PrettyPrint(answer.Sources)
		return nil
	}

	m := tui.New(pipeline, sourcePaths(cfg.Sources))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.RAG.Store {
	case config.StoreChromem:
		return chromem.NewStore(cfg.RAG.Chromem)
	case config.StorePgvector:
		return pgvector.NewStore(ctx, cfg.RAG.Pgvector)
	case config.StoreQdrant:
		return qdrant.NewStore(ctx, cfg.RAG.Qdrant)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.RAG.Store)
	}
}

func needsVision(sources []config.Source) bool {
	for _, src := range sources {
		if src.Strategy == config.StrategyVision {
			return true
		}
	}
	return false
}

func sourcePaths(sources []config.Source) []string {
	paths := make([]string, len(sources))
	for i, src := range sources {
		paths[i] = src.Path
	}
	return paths
}
