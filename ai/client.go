// Package ai implements the reasoning loop that decides which ranges of a
// workbook to inspect and emits final table boundaries. It consumes the
// excel package's uniform cell-access API through LLM tool calls.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
	"github.com/Flagro/llm-excel-table-finder/models"
)

// Client is the OpenAI chat-completions client shared by the agent tool
// loop and the structured extraction pass.
type Client struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// NewClient creates a chat-completions client from AI configuration.
func NewClient(config *models.AIConfig) *Client {
	log.Printf("[Client] Initializing client with model=%s, temp=%.2f, maxTokens=%d",
		config.OpenAIModel, config.Temperature, config.MaxTokens)
	return &Client{
		APIKey:      config.OpenAIKey,
		BaseURL:     config.OpenAIBaseURL,
		Model:       config.OpenAIModel,
		Temperature: config.Temperature,
		MaxTokens:   config.MaxTokens,
		Timeout:     180 * time.Second,
		HTTPClient:  &http.Client{Timeout: 180 * time.Second},
	}
}

// ChatMessage is one message in a chat-completions conversation.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition advertises one callable tool to the model.
type ToolDefinition struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

// FunctionSchema is a tool's name, description, and JSON-schema parameters.
type FunctionSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ResponseFormat forces structured output from the model.
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" for structured output
}

type chatRequest struct {
	Model               string           `json:"model"`
	Messages            []ChatMessage    `json:"messages"`
	Temperature         float64          `json:"temperature"`
	MaxCompletionTokens int              `json:"max_completion_tokens,omitempty"`
	Tools               []ToolDefinition `json:"tools,omitempty"`
	ResponseFormat      *ResponseFormat  `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// CreateChatCompletion makes one chat-completions call and returns the
// assistant message, which may carry tool calls.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, format *ResponseFormat) (*ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	reqBody := chatRequest{
		Model:               c.Model,
		Messages:            messages,
		Temperature:         c.Temperature,
		MaxCompletionTokens: c.MaxTokens,
		Tools:               tools,
		ResponseFormat:      format,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal chat request")
	}

	log.Printf("[Client] Sending request to %s - messages=%d, tools=%d", c.Model, len(messages), len(tools))

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrapf(err, "request timeout after %v", c.Timeout)
		}
		return nil, errors.ExternalServiceError("OpenAI", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ExternalServiceError("OpenAI",
			errors.New(errors.CodeExternalService, "status "+resp.Status+": "+string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to parse OpenAI response envelope")
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New(errors.CodeExternalService, "no choices in OpenAI response")
	}

	message := parsed.Choices[0].Message
	log.Printf("[Client] Response received - contentLength=%d, toolCalls=%d", len(message.Content), len(message.ToolCalls))
	return &message, nil
}
