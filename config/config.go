package config

import (
	"os"
	"strconv"
	"time"
)

const (
	StoreQdrant   = "qdrant"
	StorePgvector = "pgvector"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config holds every process-wide setting, read from the environment
// once at startup and passed explicitly into component constructors.
type Config struct {
	ServerAddr string

	VectorStore string
	QdrantURL   string
	Collection  string
	PostgresDSN string

	EmbeddingURL string
	EmbeddingDim int

	RerankURL string

	LLMProvider string
	LLMURL      string
	LLMModel    string
	LLMAPIKey   string

	TopK       int
	MaxContext int
	ChunkSize  int

	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	RerankTimeout   time.Duration
	GenerateTimeout time.Duration
}

func Load() Config {
	return Config{
		ServerAddr: getEnv("SERVER_ADDR", ":3000"),

		VectorStore: getEnv("VECTOR_STORE", StoreQdrant),
		QdrantURL:   getEnv("QDRANT_URL", "http://localhost:6333"),
		Collection:  getEnv("COLLECTION_NAME", "documents"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		EmbeddingURL: getEnv("EMBEDDING_URL", "http://localhost:8081/embed"),
		EmbeddingDim: getEnvInt("EMBEDDING_DIM", 1024),

		RerankURL: getEnv("RERANK_URL", ""),

		LLMProvider: getEnv("LLM_PROVIDER", ProviderOllama),
		LLMURL:      getEnv("LLM_URL", "http://localhost:11434/api/generate"),
		LLMModel:    getEnv("LLM_MODEL", "llama3"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),

		TopK:       getEnvInt("TOP_K", 20),
		MaxContext: getEnvInt("MAX_CONTEXT", 8),
		ChunkSize:  getEnvInt("CHUNK_SIZE", 500),

		EmbedTimeout:    getEnvDuration("EMBED_TIMEOUT", 30*time.Second),
		SearchTimeout:   getEnvDuration("SEARCH_TIMEOUT", 15*time.Second),
		RerankTimeout:   getEnvDuration("RERANK_TIMEOUT", 15*time.Second),
		GenerateTimeout: getEnvDuration("GENERATE_TIMEOUT", 3*time.Minute),
	}
}

// LoaderConfig configures the document loader binary, which watches a
// drop directory and feeds files into the server's ingestion endpoint.
type LoaderConfig struct {
	SourceDir  string
	ArchiveDir string
	BadDir     string
	Interval   time.Duration
	Settle     time.Duration

	ConverterURL string
	ServerURL    string

	CropTop    float64
	CropBottom float64
}

func LoadLoader() LoaderConfig {
	return LoaderConfig{
		SourceDir:  getEnv("LOADER_SOURCE_DIR", "./incoming"),
		ArchiveDir: getEnv("LOADER_ARCHIVE_DIR", "./archive"),
		BadDir:     getEnv("LOADER_BAD_DIR", "./bad"),
		Interval:   getEnvDuration("LOADER_INTERVAL", 10*time.Second),
		Settle:     getEnvDuration("LOADER_SETTLE", 5*time.Second),

		ConverterURL: getEnv("CONVERTER_URL", "http://localhost:5001/v1/convert/file"),
		ServerURL:    getEnv("SERVER_URL", "http://localhost:3000"),

		CropTop:    getEnvFloat("PDF_CROP_TOP", 0),
		CropBottom: getEnvFloat("PDF_CROP_BOTTOM", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
