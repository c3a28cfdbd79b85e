package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

// writeFixtureXLSX writes a workbook with one sheet and the given cells to a
// temp file and returns its path.
func writeFixtureXLSX(t *testing.T, sheet string, cells map[string]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for addr, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, addr, v))
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func openFixture(t *testing.T, path string) *XLSXReader {
	t.Helper()
	r, err := OpenXLSX(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestXLSXSheetNames(t *testing.T) {
	path := writeFixtureXLSX(t, "Data", map[string]interface{}{"A1": "x"})
	r := openFixture(t, path)
	assert.Equal(t, []string{"Data"}, r.SheetNames())
}

func TestXLSXSheetBounds(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{
		"A1": "name", "B1": "qty",
		"A2": "apples", "B2": 3,
		"A3": "pears", "B3": 5,
	})
	r := openFixture(t, path)

	bounds, err := r.SheetBounds("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "A1:B3", bounds.Notation())
}

func TestXLSXSheetBoundsEmptySheet(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", nil)
	r := openFixture(t, path)

	bounds, err := r.SheetBounds("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "A1:A1", bounds.Notation())
	assert.True(t, bounds.SingleCell())
}

func TestXLSXSheetBoundsUnknownSheet(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{"A1": "x"})
	r := openFixture(t, path)

	_, err := r.SheetBounds("Missing")
	assert.True(t, errors.HasCode(err, errors.CodeSheetNotFound))
}

func TestXLSXCellsInRangeRowMajor(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{
		"A1": "a", "B1": "b",
		"A2": "c", "B2": "d",
	})
	r := openFixture(t, path)

	cells, err := r.CellsInRange("Sheet1", "A1:B2")
	require.NoError(t, err)
	require.Len(t, cells, 4)

	addrs := make([]string, len(cells))
	for i, c := range cells {
		addrs[i] = c.Address
	}
	assert.Equal(t, []string{"A1", "B1", "A2", "B2"}, addrs)
	assert.Equal(t, "a", cells[0].Value.String())
	assert.Equal(t, "d", cells[3].Value.String())
}

func TestXLSXCellsInRangeClipsToExtent(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{
		"A1": "a", "B1": "b",
		"A2": "c", "B2": "d",
	})
	r := openFixture(t, path)

	cells, err := r.CellsInRange("Sheet1", "A1:E10")
	require.NoError(t, err)
	assert.Len(t, cells, 4)
}

func TestXLSXCellsInRangeReversedIsEmpty(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{"A1": "a", "B2": "d"})
	r := openFixture(t, path)

	cells, err := r.CellsInRange("Sheet1", "B2:A1")
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestXLSXCellsInRangeInvalidNotation(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{"A1": "a"})
	r := openFixture(t, path)

	_, err := r.CellsInRange("Sheet1", "not-a-range")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidAddress))
}

func TestXLSXScanUntilEmpty(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{
		"A1": "h1", "B1": "h2", "C1": "h3",
		"A2": 1, "A3": 2, "A4": 3,
		// A5 left empty, A6 starts a separate region
		"A6": "below",
	})
	r := openFixture(t, path)

	t.Run("down stops before empty cell", func(t *testing.T) {
		cells, err := r.ScanUntilEmpty("Sheet1", "A1", DirectionDown)
		require.NoError(t, err)
		addrs := make([]string, len(cells))
		for i, c := range cells {
			addrs[i] = c.Address
		}
		assert.Equal(t, []string{"A1", "A2", "A3", "A4"}, addrs)
	})

	t.Run("right stops at boundary cell", func(t *testing.T) {
		cells, err := r.ScanUntilEmpty("Sheet1", "A1", DirectionRight)
		require.NoError(t, err)
		require.Len(t, cells, 3)
		assert.Equal(t, "C1", cells[2].Address)
	})

	t.Run("up from a region edge", func(t *testing.T) {
		cells, err := r.ScanUntilEmpty("Sheet1", "A4", DirectionUp)
		require.NoError(t, err)
		require.Len(t, cells, 4)
		assert.Equal(t, "A1", cells[3].Address)
	})

	t.Run("empty start yields empty result", func(t *testing.T) {
		cells, err := r.ScanUntilEmpty("Sheet1", "A5", DirectionDown)
		require.NoError(t, err)
		assert.Empty(t, cells)
	})

	t.Run("invalid start address", func(t *testing.T) {
		_, err := r.ScanUntilEmpty("Sheet1", "", DirectionDown)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidAddress))
	})
}

func TestXLSXFormatting(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "header"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "data"))
	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", styleID))
	path := filepath.Join(t.TempDir(), "styled.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	r := openFixture(t, path)
	cells, err := r.CellsInRange("Sheet1", "A1:A2")
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, true, cells[0].Formatting["bold"])
	assert.NotEqual(t, true, cells[1].Formatting["bold"])
}

func TestXLSXCloseIdempotent(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{"A1": "x"})
	r, err := OpenXLSX(path)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.SheetBounds("Sheet1")
	assert.True(t, errors.HasCode(err, errors.CodeIOFailure))
	assert.Nil(t, r.SheetNames())
}
