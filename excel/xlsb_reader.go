package excel

import (
	"fmt"

	"github.com/TsubasaBE/go-xlsb/workbook"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

// XLSBReader reads compressed-binary workbooks (.xlsb) through go-xlsb.
//
// The format only exposes a forward row stream: no random cell access and
// no formatting API. The handle therefore owns two lazy caches per sheet,
// populated on first use and never invalidated for the handle's lifetime:
// a dimension summary and a full dense value snapshot. CellsInRange
// streams the row iterator directly; bounds, directional scans, and the
// reverse-scan helpers consult the caches since they revisit rows already
// passed. Reopening the file is required to observe updated content.
type XLSBReader struct {
	path   string
	wb     *workbook.Workbook
	names  []string
	closed bool

	dims map[string]xlsbDims
	data map[string][][]Value
}

// xlsbDims is the cached dimension summary for one sheet: the largest
// populated zero-indexed row and column, or (-1, -1) for an empty sheet.
type xlsbDims struct {
	maxRow int
	maxCol int
}

// OpenXLSB opens a compressed-binary workbook.
func OpenXLSB(path string) (*XLSBReader, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, errors.IOFailure(path, err)
	}
	return &XLSBReader{
		path:  path,
		wb:    wb,
		names: wb.Sheets(),
		dims:  map[string]xlsbDims{},
		data:  map[string][][]Value{},
	}, nil
}

func (r *XLSBReader) SheetNames() []string {
	if r.closed {
		return nil
	}
	return r.names
}

func (r *XLSBReader) sheetIndex(sheetName string) (int, error) {
	for i, n := range r.names {
		if n == sheetName {
			return i, nil
		}
	}
	return 0, errors.SheetNotFound(sheetName)
}

func (r *XLSBReader) SheetBounds(sheetName string) (CellRange, error) {
	if r.closed {
		return CellRange{}, errClosed()
	}
	dims, err := r.sheetDims(sheetName)
	if err != nil {
		return CellRange{}, err
	}
	if dims.maxRow < 0 || dims.maxCol < 0 {
		return CellRange{}, nil // degenerate A1:A1
	}
	return CellRange{EndCol: dims.maxCol, EndRow: dims.maxRow}, nil
}

func (r *XLSBReader) CellsInRange(sheetName, rangeNotation string) ([]CellData, error) {
	if r.closed {
		return nil, errClosed()
	}
	rng, err := ParseRange(rangeNotation)
	if err != nil {
		return nil, err
	}
	idx, err := r.sheetIndex(sheetName)
	if err != nil {
		return nil, err
	}
	ws, err := r.wb.Sheet(idx + 1) // the library numbers sheets from 1
	if err != nil {
		return nil, errors.BackendUnavailable("go-xlsb", err)
	}

	// A single bounded forward pass; the stream is always drained fully so
	// the row channel's producer can finish.
	var cells []CellData
	rowIdx := 0
	for rowCells := range ws.Rows(true) {
		if rowIdx >= rng.StartRow && rowIdx <= rng.EndRow {
			for col := rng.StartCol; col <= rng.EndCol && col < len(rowCells); col++ {
				cells = append(cells, CellData{
					Address:    FormatAddress(col, rowIdx),
					Value:      xlsbValue(rowCells[col].V),
					Formatting: absentFormatting(),
				})
			}
		}
		rowIdx++
	}
	return cells, nil
}

func (r *XLSBReader) ScanUntilEmpty(sheetName, startCell string, dir Direction) ([]CellData, error) {
	if r.closed {
		return nil, errClosed()
	}
	col, row, err := ParseAddress(startCell)
	if err != nil {
		return nil, err
	}
	dCol, dRow, ok := dir.Delta()
	if !ok {
		return nil, errors.ValidationError(fmt.Sprintf("unknown scan direction %q", dir))
	}
	dims, err := r.sheetDims(sheetName)
	if err != nil {
		return nil, err
	}
	grid, err := r.sheetData(sheetName)
	if err != nil {
		return nil, err
	}

	var cells []CellData
	for i := 0; i < scanIterationCap; i++ {
		if row < 0 || col < 0 || row > dims.maxRow || col > dims.maxCol {
			break
		}
		value := gridValue(grid, row, col)
		if value.IsEmpty() {
			break
		}
		cells = append(cells, CellData{
			Address:    FormatAddress(col, row),
			Value:      value,
			Formatting: absentFormatting(),
		})
		col += dCol
		row += dRow
	}
	return cells, nil
}

// SheetPreview returns the top-left corner of a sheet, at most maxRows by
// maxCols cells, clipped to each row's physical extent.
func (r *XLSBReader) SheetPreview(sheetName string, maxRows, maxCols int) ([]CellData, error) {
	if r.closed {
		return nil, errClosed()
	}
	grid, err := r.sheetData(sheetName)
	if err != nil {
		return nil, err
	}
	var cells []CellData
	for row := 0; row < len(grid) && row < maxRows; row++ {
		for col := 0; col < len(grid[row]) && col < maxCols; col++ {
			cells = append(cells, CellData{
				Address:    FormatAddress(col, row),
				Value:      grid[row][col],
				Formatting: absentFormatting(),
			})
		}
	}
	return cells, nil
}

// LastNonEmptyInColumn finds the bottom-most non-empty cell in a column
// given by its letters, or nil when the column has none. A reverse scan
// like this is only tractable through the cached snapshot.
func (r *XLSBReader) LastNonEmptyInColumn(sheetName, column string) (*CellData, error) {
	if r.closed {
		return nil, errClosed()
	}
	col, err := LettersToColumn(column)
	if err != nil {
		return nil, err
	}
	grid, err := r.sheetData(sheetName)
	if err != nil {
		return nil, err
	}
	for row := len(grid) - 1; row >= 0; row-- {
		if col < len(grid[row]) && !grid[row][col].IsEmpty() {
			return &CellData{
				Address:    FormatAddress(col, row),
				Value:      grid[row][col],
				Formatting: absentFormatting(),
			}, nil
		}
	}
	return nil, nil
}

// LastNonEmptyInRow finds the right-most non-empty cell in the 1-indexed
// row number, or nil when the row has none.
func (r *XLSBReader) LastNonEmptyInRow(sheetName string, row int) (*CellData, error) {
	if r.closed {
		return nil, errClosed()
	}
	grid, err := r.sheetData(sheetName)
	if err != nil {
		return nil, err
	}
	rowIdx := row - 1
	if rowIdx < 0 || rowIdx >= len(grid) {
		return nil, nil
	}
	for col := len(grid[rowIdx]) - 1; col >= 0; col-- {
		if !grid[rowIdx][col].IsEmpty() {
			return &CellData{
				Address:    FormatAddress(col, rowIdx),
				Value:      grid[rowIdx][col],
				Formatting: absentFormatting(),
			}, nil
		}
	}
	return nil, nil
}

func (r *XLSBReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.wb != nil {
		r.wb.Close()
	}
	r.dims = nil
	r.data = nil
	return nil
}

// sheetDims returns the cached dimension summary, computing it on first
// access by scanning every row once and tracking the right-most non-empty
// cell per row.
func (r *XLSBReader) sheetDims(sheetName string) (xlsbDims, error) {
	if dims, ok := r.dims[sheetName]; ok {
		return dims, nil
	}
	idx, err := r.sheetIndex(sheetName)
	if err != nil {
		return xlsbDims{}, err
	}
	ws, err := r.wb.Sheet(idx + 1)
	if err != nil {
		return xlsbDims{}, errors.BackendUnavailable("go-xlsb", err)
	}
	dims := xlsbDims{maxRow: -1, maxCol: -1}
	rowIdx := 0
	for rowCells := range ws.Rows(true) {
		for col := len(rowCells) - 1; col >= 0; col-- {
			if !xlsbValue(rowCells[col].V).IsEmpty() {
				dims.maxRow = rowIdx
				if col > dims.maxCol {
					dims.maxCol = col
				}
				break
			}
		}
		rowIdx++
	}
	r.dims[sheetName] = dims
	return dims, nil
}

// sheetData returns the cached dense snapshot, materializing the full
// sheet on first access. This loads the entire sheet into memory, which
// the contract accepts in exchange for random access and reverse scans.
func (r *XLSBReader) sheetData(sheetName string) ([][]Value, error) {
	if grid, ok := r.data[sheetName]; ok {
		return grid, nil
	}
	idx, err := r.sheetIndex(sheetName)
	if err != nil {
		return nil, err
	}
	ws, err := r.wb.Sheet(idx + 1)
	if err != nil {
		return nil, errors.BackendUnavailable("go-xlsb", err)
	}
	var grid [][]Value
	for rowCells := range ws.Rows(true) {
		row := make([]Value, len(rowCells))
		for col := range rowCells {
			row[col] = xlsbValue(rowCells[col].V)
		}
		grid = append(grid, row)
	}
	r.data[sheetName] = grid
	return grid, nil
}

func gridValue(grid [][]Value, row, col int) Value {
	if row < len(grid) && col < len(grid[row]) {
		return grid[row][col]
	}
	return EmptyValue()
}

// xlsbValue maps a raw stream value onto the uniform value kinds. Date
// cells surface as raw serial numbers in this format and stay numeric;
// there is no style information to tell them apart.
func xlsbValue(v interface{}) Value {
	switch n := v.(type) {
	case nil:
		return EmptyValue()
	case string:
		if n == "" {
			return EmptyValue()
		}
		return TextValue(n)
	case float64:
		return NumberValue(n)
	case float32:
		return NumberValue(float64(n))
	case int:
		return NumberValue(float64(n))
	case int64:
		return NumberValue(float64(n))
	case bool:
		return BoolValue(n)
	default:
		return TextValue(fmt.Sprint(n))
	}
}

// absentFormatting reports every formatting attribute as explicitly
// absent. The compressed-binary format exposes no formatting; callers
// must treat absent as unknown, never as plain/default.
func absentFormatting() map[string]interface{} {
	return map[string]interface{}{
		"bold":                 nil,
		"italic":               nil,
		"underline":            nil,
		"font_size":            nil,
		"font_color":           nil,
		"fill_color":           nil,
		"has_border":           nil,
		"number_format":        nil,
		"horizontal_alignment": nil,
		"vertical_alignment":   nil,
	}
}
