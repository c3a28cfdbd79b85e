package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flagro/llm-excel-table-finder/excel"
	"github.com/Flagro/llm-excel-table-finder/internal/errors"
	"github.com/Flagro/llm-excel-table-finder/models"
)

// sparseReader serves cells from an address map, leaving gaps for addresses
// it does not know about.
type sparseReader struct {
	sheet string
	cells map[string]excel.Value
}

func (s *sparseReader) SheetNames() []string { return []string{s.sheet} }

func (s *sparseReader) SheetBounds(sheetName string) (excel.CellRange, error) {
	if sheetName != s.sheet {
		return excel.CellRange{}, errors.SheetNotFound(sheetName)
	}
	return excel.CellRange{EndCol: 25, EndRow: 99}, nil
}

func (s *sparseReader) CellsInRange(sheetName, rangeNotation string) ([]excel.CellData, error) {
	if sheetName != s.sheet {
		return nil, errors.SheetNotFound(sheetName)
	}
	rng, err := excel.ParseRange(rangeNotation)
	if err != nil {
		return nil, err
	}
	var out []excel.CellData
	for row := rng.StartRow; row <= rng.EndRow; row++ {
		for col := rng.StartCol; col <= rng.EndCol; col++ {
			addr := excel.FormatAddress(col, row)
			if v, ok := s.cells[addr]; ok {
				out = append(out, excel.CellData{Address: addr, Value: v})
			}
		}
	}
	return out, nil
}

func (s *sparseReader) ScanUntilEmpty(string, string, excel.Direction) ([]excel.CellData, error) {
	return nil, nil
}

func (s *sparseReader) Close() error { return nil }

func TestTableFileName(t *testing.T) {
	tests := []struct {
		base  string
		index int
		total int
		want  string
	}{
		{"out.csv", 0, 1, "out.csv"},
		{"out.csv", 0, 2, "out_table_1.csv"},
		{"out.csv", 1, 2, "out_table_2.csv"},
		{"dir/out.csv", 2, 3, "dir/out_table_3.csv"},
		// a base path without an extension gets .csv appended
		{"noext", 0, 1, "noext.csv"},
		{"noext", 0, 2, "noext_table_1.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TableFileName(tt.base, tt.index, tt.total))
	}
}

func TestWriteTablesSingle(t *testing.T) {
	reader := &sparseReader{
		sheet: "Data",
		cells: map[string]excel.Value{
			"A2": excel.TextValue("apples"), "B2": excel.NumberValue(3),
			"A3": excel.TextValue("pears"), // B3 left empty
		},
	}
	out := filepath.Join(t.TempDir(), "out.csv")
	tables := []models.TableWithHeaders{{
		SheetName:   "Data",
		Headers:     []string{"name", "qty"},
		HeaderRange: "A1:B1",
		DataRange:   "A2:B3",
	}}

	paths, err := WriteTables(reader, tables, out)
	require.NoError(t, err)
	require.Equal(t, []string{out}, paths)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"name", "qty"},
		{"apples", "3"},
		{"pears", ""},
	}, rows)
}

func TestWriteTablesMultipleGetSuffixes(t *testing.T) {
	reader := &sparseReader{
		sheet: "Data",
		cells: map[string]excel.Value{"A2": excel.TextValue("x"), "D2": excel.TextValue("y")},
	}
	base := filepath.Join(t.TempDir(), "out.csv")
	tables := []models.TableWithHeaders{
		{SheetName: "Data", Headers: []string{"a"}, HeaderRange: "A1:A1", DataRange: "A2:A2"},
		{SheetName: "Data", Headers: []string{"d"}, HeaderRange: "D1:D1", DataRange: "D2:D2"},
	}

	paths, err := WriteTables(reader, tables, base)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "_table_1")
	assert.Contains(t, paths[1], "_table_2")
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestWriteTablesDefaultNames(t *testing.T) {
	t.Chdir(t.TempDir())
	reader := &sparseReader{
		sheet: "Data",
		cells: map[string]excel.Value{"A2": excel.TextValue("x"), "D2": excel.TextValue("y")},
	}
	tables := []models.TableWithHeaders{
		{SheetName: "Data", Headers: []string{"a"}, HeaderRange: "A1:A1", DataRange: "A2:A2"},
		{SheetName: "Data", Headers: []string{"d"}, HeaderRange: "D1:D1", DataRange: "D2:D2"},
	}

	paths, err := WriteTables(reader, tables, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"table_Data_1.csv", "table_Data_2.csv"}, paths)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestWriteTablesUnknownSheet(t *testing.T) {
	reader := &sparseReader{sheet: "Data"}
	tables := []models.TableWithHeaders{{
		SheetName:   "Other",
		Headers:     []string{"a"},
		HeaderRange: "A1:A1",
		DataRange:   "A2:A2",
	}}

	_, err := WriteTables(reader, tables, filepath.Join(t.TempDir(), "out.csv"))
	assert.True(t, errors.HasCode(err, errors.CodeSheetNotFound))
}
