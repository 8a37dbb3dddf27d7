package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// knownChatModelFragments contains name fragments that identify
// chat/completion models which are NOT suitable for embedding. If
// EMBEDDING_MODEL matches any of these, a warning is emitted so the operator
// knows they may have misconfigured the pipeline.
var knownChatModelFragments = []string{
	"gpt-4",
	"gpt-3.5",
	"o1",
	"o3",
	"llama3",
	"llama-3",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"claude",
	"deepseek",
	"qwen",
	"gemini-1.5",
	"gemini-2",
}

// looksLikeChatModel returns true when the model name resembles a known
// chat/completion model rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, fragment := range knownChatModelFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Validate checks that the embedder configuration is usable before any
// network call is made. It returns an error if the configuration is clearly
// broken (missing credentials for the selected backend), and logs a warning
// if EMBEDDING_MODEL looks like a chat model rather than an embedding model.
//
// Call it at command start so operators get a clear error instead of a
// cryptic failure during the first embed batch.
func Validate(log *slog.Logger) error {
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "jina")

	switch backend {
	case "jina":
		if getEnv("EMBEDDING_API_KEY") == "" && getEnv("JINA_API_KEY") == "" {
			return fmt.Errorf("embedder: no Jina API key found, set JINA_API_KEY or EMBEDDING_API_KEY")
		}
	case "openai":
		if getEnv("EMBEDDING_API_KEY") == "" && getEnv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("embedder: no OpenAI API key found, set OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
	case "azure":
		if getEnv("EMBEDDING_API_KEY") == "" && getEnv("AZURE_OPENAI_API_KEY") == "" {
			return fmt.Errorf("embedder: no Azure API key found, set AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		if getEnv("EMBEDDING_ENDPOINT") == "" && getEnv("AZURE_OPENAI_ENDPOINT") == "" {
			return fmt.Errorf("embedder: no Azure endpoint found, set AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
		}
	case "ollama":
		// Local backend, nothing to validate.
	default:
		return fmt.Errorf("embedder: unknown backend %q, valid values: jina, openai, azure, ollama", backend)
	}

	model := os.Getenv("EMBEDDING_MODEL")
	if model != "" && looksLikeChatModel(model) {
		log.Warn("embedder: EMBEDDING_MODEL looks like a chat model, not an embedding model, "+
			"this will likely produce poor or broken embeddings",
			slog.String("model", model),
			slog.String("hint", "use a dedicated embedding model e.g. jina-clip-v2, text-embedding-3-small"),
		)
	}

	return nil
}
