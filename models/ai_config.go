package models

import (
	"os"
	"strconv"
)

// AIConfig holds LLM service configuration for the table finder agent
type AIConfig struct {
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
	SystemContext     string
	MaxTokens         int
	Temperature       float64
	MaxToolIterations int // cap on agent tool-call rounds per run
}

// DefaultAIConfig returns sensible defaults for AI configuration
func DefaultAIConfig() *AIConfig {
	config := &AIConfig{
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     "https://api.openai.com/v1",
		OpenAIModel:       os.Getenv("LLM_MODEL"),
		SystemContext:     "You are an expert at analyzing Excel spreadsheets to find tables.",
		MaxTokens:         4000, // default
		Temperature:       0,    // deterministic table boundaries
		MaxToolIterations: 25,
	}

	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.OpenAIBaseURL = baseURL
	}

	if config.OpenAIModel == "" {
		config.OpenAIModel = "gpt-4o-mini"
	}

	// Parse MaxTokens from environment
	if maxTokensStr := os.Getenv("LLM_MAX_TOKENS"); maxTokensStr != "" {
		if maxTokens, err := strconv.Atoi(maxTokensStr); err == nil {
			config.MaxTokens = maxTokens
		}
	}

	// Parse Temperature from environment
	if tempStr := os.Getenv("LLM_TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 64); err == nil {
			config.Temperature = temp
		}
	}

	return config
}
