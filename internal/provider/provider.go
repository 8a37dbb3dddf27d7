// Package provider selects and constructs the generative LLM backend used
// to produce grounded answers. Supported backends: Ollama, OpenAI,
// Azure OpenAI, AWS Bedrock (via the ark runtime), Google Gemini.
package provider

import (
	"fmt"

	"github.com/cloudwego/eino/components/model"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendBedrock selects AWS Bedrock.
	BackendBedrock Backend = "bedrock"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// Config holds all provider-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name or deployment ID (e.g. "gemini-1.5-flash").
	Model string

	// BaseURL overrides the default API endpoint (required for Ollama and Azure).
	BaseURL string

	// APIKey is the authentication credential for the selected provider.
	APIKey string

	// AzureDeployment is the Azure OpenAI deployment name (Azure only).
	AzureDeployment string

	// AzureAPIVersion is the Azure OpenAI REST API version (Azure only).
	AzureAPIVersion string

	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int

	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Validate checks that the config carries everything the selected backend
// needs, so callers get a clear error at startup rather than on the first
// generation call.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama:
		// BaseURL defaults to localhost; nothing mandatory.
	case BackendOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("provider: OPENAI_API_KEY is required for openai backend")
		}
	case BackendAzure:
		if c.APIKey == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_API_KEY is required for azure backend")
		}
		if c.BaseURL == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_ENDPOINT is required for azure backend")
		}
		if c.AzureDeployment == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_DEPLOYMENT is required for azure backend")
		}
	case BackendBedrock:
		if c.Model == "" {
			return fmt.Errorf("provider: BEDROCK_MODEL_ID is required for bedrock backend")
		}
	case BackendGemini:
		if c.APIKey == "" {
			return fmt.Errorf("provider: GOOGLE_API_KEY is required for gemini backend")
		}
	default:
		return fmt.Errorf("provider: unknown backend %q, valid values: ollama, openai, azure, bedrock, gemini", c.Backend)
	}
	return nil
}

// ChatModel is the interface the generation layer requires of a backend:
// the eino base chat-model contract (Generate / Stream).
type ChatModel = model.BaseChatModel
