package ai

import (
	"fmt"
	"strings"
)

// Table finding prompts
const tableFindingPromptWithHeaders = `You are an expert at analyzing Excel spreadsheets to find tables.

Your task is to find all tables in the following sheets: %s

For each table you find, you must identify:
1. The complete range including headers (in Excel notation like A3:C10)
2. The header row values (list of column names)
3. The data range (excluding the header row)

A table typically has:
- A header row with column names (often bold or with different formatting)
- Multiple rows of data below the headers
- Consistent structure across rows
- Empty cells or different content around its boundaries

Use the available tools to:
1. Get the bounds of each sheet to understand the data area
2. Get cells in ranges to see values and formatting
3. Iterate in directions to find table boundaries

After analyzing the sheets, provide your findings with:
- Sheet name
- List of header names
- Header range (e.g., A1:C1)
- Data range (e.g., A2:C10)
- Optional description

Be thorough and find all tables, even small ones.`

const tableFindingPromptWithoutHeaders = `You are an expert at analyzing Excel spreadsheets to find tables.

Your task is to find all tables in the following sheets: %s

A table is a rectangular region of cells that contains structured data, typically with:
- A header row (often with bold formatting or different styling)
- Multiple rows of data
- Consistent columns
- Empty cells or different content around its boundaries

Use the available tools to:
1. Get the bounds of each sheet to understand the data area
2. Get cells in ranges to see values and formatting
3. Iterate in directions to find table boundaries

After analyzing the sheets, provide your findings with:
- Sheet name
- Range in Excel notation (e.g., A3:C10)
- Optional description of what the table contains

Be thorough and find all tables, even small ones.`

// Structured output extraction prompts
const structuredOutputPromptWithHeaders = `Based on your analysis, extract all found tables with their headers.
Previous conversation: %s

Respond with a JSON object of the form:
{"tables": [{"sheet_name": "...", "headers": ["..."], "header_range": "A1:C1", "data_range": "A2:C10", "description": "..."}]}`

const structuredOutputPromptWithoutHeaders = `Based on your analysis, extract all found table ranges.
Previous conversation: %s

Respond with a JSON object of the form:
{"tables": [{"sheet_name": "...", "range": "A3:C10", "description": "..."}]}`

// GetTableFindingPrompt builds the prompt that kicks off the tool loop.
func GetTableFindingPrompt(sheetNames []string, includeHeaders bool) string {
	joined := strings.Join(sheetNames, ", ")
	if includeHeaders {
		return fmt.Sprintf(tableFindingPromptWithHeaders, joined)
	}
	return fmt.Sprintf(tableFindingPromptWithoutHeaders, joined)
}

// GetStructuredOutputPrompt builds the prompt for the extraction pass that
// turns the agent's final analysis into structured output.
func GetStructuredOutputPrompt(lastMessageContent string, includeHeaders bool) string {
	if includeHeaders {
		return fmt.Sprintf(structuredOutputPromptWithHeaders, lastMessageContent)
	}
	return fmt.Sprintf(structuredOutputPromptWithoutHeaders, lastMessageContent)
}
