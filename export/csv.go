// Package export writes located tables out as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Flagro/llm-excel-table-finder/excel"
	"github.com/Flagro/llm-excel-table-finder/internal/errors"
	"github.com/Flagro/llm-excel-table-finder/models"
)

// TableFileName returns the output path for table index (0-based) out of
// total. A single table keeps the base path; multiple tables get a
// "_table_N" suffix before the extension, numbered from 1. A base path
// without an extension gets ".csv".
func TableFileName(basePath string, index, total int) string {
	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(basePath, ext)
	if ext == "" {
		ext = ".csv"
	}
	if total <= 1 {
		return stem + ext
	}
	return fmt.Sprintf("%s_table_%d%s", stem, index+1, ext)
}

// defaultTableFileName names a table's output file when the caller gave no
// base path.
func defaultTableFileName(sheetName string, index int) string {
	return fmt.Sprintf("table_%s_%d.csv", sheetName, index+1)
}

// WriteTables exports each located table to its own CSV file. The header row
// comes from the extracted headers; data rows are read back from the
// workbook. An empty basePath falls back to per-table default names.
// Returns the written file paths.
func WriteTables(reader excel.Reader, tables []models.TableWithHeaders, basePath string) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for i := range tables {
		var path string
		if basePath == "" {
			path = defaultTableFileName(tables[i].SheetName, i)
		} else {
			path = TableFileName(basePath, i, len(tables))
		}
		if err := writeTable(reader, &tables[i], path); err != nil {
			return paths, err
		}
		log.Printf("[Export] Wrote %s (%s!%s)", path, tables[i].SheetName, tables[i].DataRange)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(reader excel.Reader, table *models.TableWithHeaders, path string) error {
	rows, err := tableRows(reader, table)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.IOFailure(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return errors.IOFailure(path, err)
	}
	return nil
}

// tableRows assembles the header row plus dense data rows. Cells absent from
// the workbook read come back as empty strings so every row has the same
// width as the data range.
func tableRows(reader excel.Reader, table *models.TableWithHeaders) ([][]string, error) {
	dataRange, err := excel.ParseRange(table.DataRange)
	if err != nil {
		return nil, err
	}

	cells, err := reader.CellsInRange(table.SheetName, table.DataRange)
	if err != nil {
		return nil, err
	}
	byAddress := make(map[string]string, len(cells))
	for _, cell := range cells {
		byAddress[cell.Address] = cell.Value.String()
	}

	rows := [][]string{append([]string(nil), table.Headers...)}
	for row := dataRange.StartRow; row <= dataRange.EndRow; row++ {
		line := make([]string, 0, dataRange.EndCol-dataRange.StartCol+1)
		for col := dataRange.StartCol; col <= dataRange.EndCol; col++ {
			line = append(line, byAddress[excel.FormatAddress(col, row)])
		}
		rows = append(rows, line)
	}
	return rows, nil
}
