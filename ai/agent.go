package ai

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/Flagro/llm-excel-table-finder/excel"
	"github.com/Flagro/llm-excel-table-finder/internal/errors"
	"github.com/Flagro/llm-excel-table-finder/models"
)

// TableFinder runs the tool-calling loop that explores a workbook and then
// extracts structured table boundaries from the conversation.
type TableFinder struct {
	client        *Client
	reader        excel.Reader
	sheetNames    []string
	maxIterations int
	runID         string
}

// NewTableFinder creates a finder over the given reader. When sheetNames is
// empty, all sheets in the workbook are analyzed.
func NewTableFinder(reader excel.Reader, config *models.AIConfig, sheetNames []string) (*TableFinder, error) {
	all := reader.SheetNames()
	if len(sheetNames) == 0 {
		sheetNames = all
	} else {
		for _, name := range sheetNames {
			if err := validateSheet(all, name); err != nil {
				return nil, err
			}
		}
	}

	return &TableFinder{
		client:        NewClient(config),
		reader:        reader,
		sheetNames:    sheetNames,
		maxIterations: config.MaxToolIterations,
		runID:         uuid.NewString(),
	}, nil
}

func validateSheet(all []string, name string) error {
	for _, candidate := range all {
		if candidate == name {
			return nil
		}
	}
	return errors.SheetNotFound(name)
}

// FindTables locates table ranges in the configured sheets.
func (f *TableFinder) FindTables(ctx context.Context) (*models.TablesOutput, error) {
	analysis, err := f.runToolLoop(ctx, false)
	if err != nil {
		return nil, err
	}

	sc := NewStructuredClient[models.TablesOutput](f.client,
		"You extract table ranges from a spreadsheet analysis and respond with JSON.")
	result, err := sc.GetJSONResponse(ctx, GetStructuredOutputPrompt(analysis, false))
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, errors.Wrap(err, "structured output failed validation")
	}
	log.Printf("[TableFinder] run=%s found %d tables", f.runID, len(result.Tables))
	return result, nil
}

// FindTablesWithHeaders locates tables and splits each into its header row
// and data range.
func (f *TableFinder) FindTablesWithHeaders(ctx context.Context) (*models.TablesWithHeadersOutput, error) {
	analysis, err := f.runToolLoop(ctx, true)
	if err != nil {
		return nil, err
	}

	sc := NewStructuredClient[models.TablesWithHeadersOutput](f.client,
		"You extract tables with their headers from a spreadsheet analysis and respond with JSON.")
	result, err := sc.GetJSONResponse(ctx, GetStructuredOutputPrompt(analysis, true))
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, errors.Wrap(err, "structured output failed validation")
	}
	log.Printf("[TableFinder] run=%s found %d tables with headers", f.runID, len(result.Tables))
	return result, nil
}

// runToolLoop drives the conversation until the model stops requesting tools
// or the iteration cap is reached, and returns the final assistant content.
func (f *TableFinder) runToolLoop(ctx context.Context, includeHeaders bool) (string, error) {
	log.Printf("[TableFinder] run=%s starting analysis of sheets %v", f.runID, f.sheetNames)

	messages := []ChatMessage{
		{Role: "user", Content: GetTableFindingPrompt(f.sheetNames, includeHeaders)},
	}
	tools := ToolDefinitions()

	for iteration := 0; iteration < f.maxIterations; iteration++ {
		response, err := f.client.CreateChatCompletion(ctx, messages, tools, nil)
		if err != nil {
			return "", err
		}
		messages = append(messages, *response)

		if len(response.ToolCalls) == 0 {
			log.Printf("[TableFinder] run=%s analysis complete after %d iterations", f.runID, iteration+1)
			return response.Content, nil
		}

		for _, call := range response.ToolCalls {
			result := DispatchTool(f.reader, call)
			messages = append(messages, ChatMessage{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	log.Printf("[TableFinder] run=%s hit tool iteration cap (%d)", f.runID, f.maxIterations)
	// Ask for a final summary without tools so the extraction pass has
	// something to work with.
	messages = append(messages, ChatMessage{
		Role:    "user",
		Content: "Summarize all tables you have found so far.",
	})
	response, err := f.client.CreateChatCompletion(ctx, messages, nil, nil)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}
