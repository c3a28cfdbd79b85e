package ai

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/Flagro/llm-excel-table-finder/excel"
)

// Tool names exposed to the model.
const (
	ToolGetSheetBounds    = "get_sheet_bounds"
	ToolGetCellsInRange   = "get_cells_in_range"
	ToolIterateUntilEmpty = "iterate_until_empty"
)

// ToolDefinitions returns the spreadsheet inspection tools advertised to
// the model: sheet bounds, range reads, and directional scans.
func ToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Type: "function",
			Function: FunctionSchema{
				Name:        ToolGetSheetBounds,
				Description: "Get the boundaries of a sheet in Excel notation (e.g. \"A1:Z100\").",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"sheet_name": map[string]interface{}{
							"type":        "string",
							"description": "Name of the sheet to get bounds for",
						},
					},
					"required": []string{"sheet_name"},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionSchema{
				Name:        ToolGetCellsInRange,
				Description: "Get cells with values and formatting in the requested area.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"sheet_name": map[string]interface{}{
							"type":        "string",
							"description": "Name of the sheet",
						},
						"range_notation": map[string]interface{}{
							"type":        "string",
							"description": "Range in Excel notation (e.g. \"A3:C10\")",
						},
					},
					"required": []string{"sheet_name", "range_notation"},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionSchema{
				Name:        ToolIterateUntilEmpty,
				Description: "Iterate from a cell in a direction until an empty cell is found.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"sheet_name": map[string]interface{}{
							"type":        "string",
							"description": "Name of the sheet",
						},
						"start_cell": map[string]interface{}{
							"type":        "string",
							"description": "Starting cell in Excel notation (e.g. \"A3\")",
						},
						"direction": map[string]interface{}{
							"type":        "string",
							"enum":        []string{"up", "down", "left", "right"},
							"description": "Direction to iterate",
						},
					},
					"required": []string{"sheet_name", "start_cell", "direction"},
				},
			},
		},
	}
}

// toolCell is the wire shape of one cell in a tool result: value rendered
// as text ("" when absent) plus the formatting map.
type toolCell struct {
	Address    string                 `json:"address"`
	Value      string                 `json:"value"`
	Formatting map[string]interface{} `json:"formatting"`
}

// DispatchTool executes one tool call against the reader and returns the
// textual tool result. Failures are rendered into the result rather than
// returned, so the model can observe and correct its own bad arguments.
func DispatchTool(reader excel.Reader, call ToolCall) string {
	log.Printf("[Tools] Dispatching %s with args %s", call.Function.Name, call.Function.Arguments)

	switch call.Function.Name {
	case ToolGetSheetBounds:
		var args struct {
			SheetName string `json:"sheet_name"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolError(err)
		}
		bounds, err := reader.SheetBounds(args.SheetName)
		if err != nil {
			return toolError(err)
		}
		return bounds.Notation()

	case ToolGetCellsInRange:
		var args struct {
			SheetName     string `json:"sheet_name"`
			RangeNotation string `json:"range_notation"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolError(err)
		}
		cells, err := reader.CellsInRange(args.SheetName, args.RangeNotation)
		if err != nil {
			return toolError(err)
		}
		return renderCells(cells)

	case ToolIterateUntilEmpty:
		var args struct {
			SheetName string `json:"sheet_name"`
			StartCell string `json:"start_cell"`
			Direction string `json:"direction"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolError(err)
		}
		dir, ok := excel.ParseDirection(args.Direction)
		if !ok {
			return toolError(fmt.Errorf("direction must be one of: up, down, left, right (got %q)", args.Direction))
		}
		cells, err := reader.ScanUntilEmpty(args.SheetName, args.StartCell, dir)
		if err != nil {
			return toolError(err)
		}
		return renderCells(cells)

	default:
		return toolError(fmt.Errorf("unknown tool %q", call.Function.Name))
	}
}

func toolError(err error) string {
	return fmt.Sprintf("error: %v", err)
}

func renderCells(cells []excel.CellData) string {
	out := make([]toolCell, 0, len(cells))
	for _, cell := range cells {
		out = append(out, toolCell{
			Address:    cell.Address,
			Value:      cell.Value.String(),
			Formatting: cell.Formatting,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return toolError(err)
	}
	return string(data)
}
