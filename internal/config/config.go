package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ingestion strategies for a source document.
const (
	StrategyText   = "text"
	StrategyVision = "vision"
)

// Store backend selectors.
const (
	StoreChromem  = "chromem"
	StorePgvector = "pgvector"
	StoreQdrant   = "qdrant"
)

// Source is one input document plus the strategy used to extract its text.
type Source struct {
	Path     string `yaml:"path"`
	Strategy string `yaml:"strategy"`
}

// LLMConfig points at one model on an Ollama-compatible endpoint.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ChromemConfig configures the on-disk chromem-go store.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// PgvectorConfig configures the Postgres/pgvector store.
type PgvectorConfig struct {
	DSN        string `yaml:"dsn"`
	VectorSize int    `yaml:"vector_size"`
	Debug      bool   `yaml:"debug"`
}

// QdrantConfig configures the Qdrant gRPC store.
type QdrantConfig struct {
	Addr       string `yaml:"addr"`
	Collection string `yaml:"collection"`
	VectorSize int    `yaml:"vector_size"`
}

// RAGConfig holds the chunking and retrieval knobs plus the store selector.
type RAGConfig struct {
	ChunkSize    int             `yaml:"chunk_size"`
	ChunkOverlap int             `yaml:"chunk_overlap"`
	TopK         int             `yaml:"top_k"`
	Store        string          `yaml:"store"`
	Chromem      ChromemConfig   `yaml:"chromem"`
	Pgvector     *PgvectorConfig `yaml:"pgvector,omitempty"`
	Qdrant       *QdrantConfig   `yaml:"qdrant,omitempty"`
}

type Config struct {
	Sources   []Source  `yaml:"sources"`
	EmbedLLM  LLMConfig `yaml:"embed_llm"`
	ChatLLM   LLMConfig `yaml:"chat_llm"`
	VisionLLM LLMConfig `yaml:"vision_llm"`
	RAG       RAGConfig `yaml:"rag"`
}

const (
	defaultBaseURL      = "http://localhost:11434"
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
	defaultTopK         = 3
	defaultStorePath    = "./ragdb"
	defaultCollection   = "documents"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	for i := range cfg.Sources {
		if cfg.Sources[i].Strategy == "" {
			cfg.Sources[i].Strategy = StrategyText
		}
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = defaultBaseURL
	}
	if cfg.ChatLLM.BaseURL == "" {
		cfg.ChatLLM.BaseURL = defaultBaseURL
	}
	if cfg.VisionLLM.BaseURL == "" {
		cfg.VisionLLM.BaseURL = defaultBaseURL
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.Store == "" {
		cfg.RAG.Store = StoreChromem
	}
	if cfg.RAG.Chromem.Path == "" {
		cfg.RAG.Chromem.Path = defaultStorePath
	}
	if cfg.RAG.Chromem.Collection == "" {
		cfg.RAG.Chromem.Collection = defaultCollection
	}
	if cfg.RAG.Pgvector != nil {
		// secrets come in through the environment, not the yaml file
		cfg.RAG.Pgvector.DSN = os.ExpandEnv(cfg.RAG.Pgvector.DSN)
	}
	if cfg.RAG.Qdrant != nil && cfg.RAG.Qdrant.Collection == "" {
		cfg.RAG.Qdrant.Collection = defaultCollection
	}
}

// Validate checks the chunking invariants and that the selected store
// backend is actually configured.
func (cfg *Config) Validate() error {
	if cfg.RAG.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive, got %d", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.ChunkOverlap < 0 {
		return fmt.Errorf("config: chunk_overlap must not be negative, got %d", cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return fmt.Errorf("config: chunk_overlap (%d) must be smaller than chunk_size (%d)", cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	if cfg.RAG.TopK <= 0 {
		return fmt.Errorf("config: top_k must be positive, got %d", cfg.RAG.TopK)
	}
	for _, src := range cfg.Sources {
		if src.Strategy != StrategyText && src.Strategy != StrategyVision {
			return fmt.Errorf("config: unknown strategy %q for source %s", src.Strategy, src.Path)
		}
	}
	switch cfg.RAG.Store {
	case StoreChromem:
	case StorePgvector:
		if cfg.RAG.Pgvector == nil || cfg.RAG.Pgvector.DSN == "" {
			return fmt.Errorf("config: store is %q but pgvector.dsn is not set", StorePgvector)
		}
	case StoreQdrant:
		if cfg.RAG.Qdrant == nil || cfg.RAG.Qdrant.Addr == "" {
			return fmt.Errorf("config: store is %q but qdrant.addr is not set", StoreQdrant)
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", cfg.RAG.Store)
	}
	return nil
}
