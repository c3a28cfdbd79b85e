package models

import (
	"fmt"

	"github.com/Flagro/llm-excel-table-finder/excel"
)

// TableRange is a single table located in a sheet.
type TableRange struct {
	SheetName   string `json:"sheet_name"`
	Range       string `json:"range"`
	Description string `json:"description,omitempty"`
}

// Validate checks that the table names a sheet and a parsable range.
func (t *TableRange) Validate() error {
	if t.SheetName == "" {
		return fmt.Errorf("table is missing a sheet name")
	}
	if _, err := excel.ParseRange(t.Range); err != nil {
		return fmt.Errorf("table range %q: %w", t.Range, err)
	}
	return nil
}

// TableWithHeaders is a located table split into its header row and data
// rows, with the extracted column names.
type TableWithHeaders struct {
	SheetName   string   `json:"sheet_name"`
	Headers     []string `json:"headers"`
	HeaderRange string   `json:"header_range"`
	DataRange   string   `json:"data_range"`
	Description string   `json:"description,omitempty"`
}

// Validate checks that the table names a sheet and both ranges parse.
func (t *TableWithHeaders) Validate() error {
	if t.SheetName == "" {
		return fmt.Errorf("table is missing a sheet name")
	}
	if _, err := excel.ParseRange(t.HeaderRange); err != nil {
		return fmt.Errorf("header range %q: %w", t.HeaderRange, err)
	}
	if _, err := excel.ParseRange(t.DataRange); err != nil {
		return fmt.Errorf("data range %q: %w", t.DataRange, err)
	}
	return nil
}

// FullRange returns the notation covering the header row through the last
// data row.
func (t *TableWithHeaders) FullRange() (string, error) {
	header, err := excel.ParseRange(t.HeaderRange)
	if err != nil {
		return "", err
	}
	data, err := excel.ParseRange(t.DataRange)
	if err != nil {
		return "", err
	}
	full := excel.CellRange{
		StartCol: header.StartCol,
		StartRow: header.StartRow,
		EndCol:   data.EndCol,
		EndRow:   data.EndRow,
	}
	return full.Notation(), nil
}

// TablesOutput is the structured result for plain table ranges.
type TablesOutput struct {
	Tables []TableRange `json:"tables"`
}

// Validate checks every table in the output.
func (o *TablesOutput) Validate() error {
	for i := range o.Tables {
		if err := o.Tables[i].Validate(); err != nil {
			return fmt.Errorf("table %d: %w", i, err)
		}
	}
	return nil
}

// TablesWithHeadersOutput is the structured result with header extraction.
type TablesWithHeadersOutput struct {
	Tables []TableWithHeaders `json:"tables"`
}

// Validate checks every table in the output.
func (o *TablesWithHeadersOutput) Validate() error {
	for i := range o.Tables {
		if err := o.Tables[i].Validate(); err != nil {
			return fmt.Errorf("table %d: %w", i, err)
		}
	}
	return nil
}
