package embedder

import (
	"fmt"
	"os"
	"strconv"

	"github.com/54b3r/newsrag-go/internal/rag"
)

// Default embedding models per backend.
const (
	defaultJinaModel   = "jina-clip-v2"
	defaultOpenAIModel = "text-embedding-3-small"
	defaultOllamaModel = "nomic-embed-text"
)

// NewFromEnv constructs a rag.Embedder from environment variables.
//
// Resolution order:
//
//  1. EMBEDDING_PROVIDER: jina | openai | azure | ollama (default: jina)
//  2. Per-backend credentials (JINA_API_KEY, OPENAI_API_KEY, ...)
//  3. EMBEDDING_MODEL: overrides the default model for the resolved backend
//  4. EMBEDDING_API_KEY: overrides the backend-native API key variable
//  5. EMBEDDING_ENDPOINT: overrides the default endpoint
//  6. EMBEDDING_BATCH_SIZE: overrides the per-request batch size (default 32)
func NewFromEnv() (rag.Embedder, error) {
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "jina")
	batchSize := getEnvInt("EMBEDDING_BATCH_SIZE", DefaultBatchSize)

	switch backend {
	case "jina":
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("JINA_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: jina requires JINA_API_KEY or EMBEDDING_API_KEY")
		}
		return NewJinaEmbedder(&JinaConfig{
			Endpoint:  getEnv("EMBEDDING_ENDPOINT"),
			APIKey:    apiKey,
			Model:     getEnvOrDefault("EMBEDDING_MODEL", defaultJinaModel),
			BatchSize: batchSize,
		}), nil

	case "openai":
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: openai requires OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		baseURL := getEnv("EMBEDDING_ENDPOINT")
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 0),
			BatchSize:  batchSize,
		}), nil

	case "azure":
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("AZURE_OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		endpoint := getEnv("EMBEDDING_ENDPOINT")
		if endpoint == "" {
			endpoint = getEnv("AZURE_OPENAI_ENDPOINT")
		}
		if endpoint == "" {
			return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    endpoint + "/openai",
			APIKey:     apiKey,
			Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 0),
			BatchSize:  batchSize,
			Azure:      true,
			APIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview"),
		}), nil

	case "ollama":
		host := getEnv("EMBEDDING_ENDPOINT")
		if host == "" {
			host = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		}
		return NewOllamaEmbedder(&OllamaConfig{
			Host:      host,
			Model:     getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel),
			BatchSize: batchSize,
		}), nil

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q, valid values: jina, openai, azure, ollama", backend)
	}
}

// getEnv returns the value of the named environment variable, or empty string.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
