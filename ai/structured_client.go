package ai

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

// StructuredClient provides typed JSON responses from LLM calls
type StructuredClient[T any] struct {
	Client        *Client
	SystemContext string
}

// NewStructuredClient creates a new structured client
func NewStructuredClient[T any](client *Client, systemContext string) *StructuredClient[T] {
	return &StructuredClient[T]{
		Client:        client,
		SystemContext: systemContext,
	}
}

// GetJSONResponse makes a typed LLM call and parses the JSON response
func (sc *StructuredClient[T]) GetJSONResponse(ctx context.Context, prompt string) (*T, error) {
	systemContent := sc.SystemContext

	// JSON mode requires "JSON" to appear somewhere in the conversation
	if !strings.Contains(strings.ToLower(systemContent), "json") {
		systemContent += "\n\nIMPORTANT: Respond with valid JSON output."
	}

	messages := []ChatMessage{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: prompt},
	}

	response, err := sc.Client.CreateChatCompletion(ctx, messages, nil, &ResponseFormat{Type: "json_object"})
	if err != nil {
		return nil, err
	}

	content := cleanJSONContent(response.Content)
	log.Printf("[StructuredClient] Cleaned content length: %d bytes", len(content))

	var result T
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		log.Printf("[StructuredClient] ERROR: Failed to unmarshal JSON content into result type: %v", err)
		return nil, errors.Wrapf(err, "failed to parse JSON content into result type (content: %s)", content)
	}
	return &result, nil
}

// cleanJSONContent removes markdown code blocks and leading chatter that
// some models emit around JSON content
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// If content starts with a line of chatter before the JSON, remove it
	if strings.Contains(content, "\n{") {
		parts := strings.SplitN(content, "\n{", 2)
		if len(parts) == 2 && !strings.Contains(parts[0], "{") && !strings.Contains(parts[0], "[") {
			content = "{" + parts[1]
		}
	} else if strings.Contains(content, "\n[") {
		parts := strings.SplitN(content, "\n[", 2)
		if len(parts) == 2 && !strings.Contains(parts[0], "{") && !strings.Contains(parts[0], "[") {
			content = "[" + parts[1]
		}
	}

	return strings.TrimSpace(content)
}
