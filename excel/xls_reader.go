package excel

import (
	"fmt"

	"github.com/yamitzky/xlrd-go/xlrd"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

// XLSReader reads legacy-binary workbooks (.xls, BIFF) through xlrd-go.
// The workbook is opened with formatting metadata so per-cell style
// records can be resolved into the shared font/format/alignment tables.
type XLSReader struct {
	path   string
	book   *xlrd.Book
	closed bool
}

// OpenXLS opens a legacy-binary workbook.
func OpenXLS(path string) (*XLSReader, error) {
	book, err := xlrd.OpenWorkbook(path, &xlrd.OpenWorkbookOptions{FormattingInfo: true})
	if err != nil {
		return nil, errors.IOFailure(path, err)
	}
	return &XLSReader{path: path, book: book}, nil
}

func (r *XLSReader) SheetNames() []string {
	if r.closed {
		return nil
	}
	return r.book.SheetNames()
}

// sheet resolves a sheet by name, distinguishing an unknown name from a
// sheet the library declared but could not load.
func (r *XLSReader) sheet(sheetName string) (*xlrd.Sheet, error) {
	if !containsSheet(r.book.SheetNames(), sheetName) {
		return nil, errors.SheetNotFound(sheetName)
	}
	sheet, err := r.book.SheetByName(sheetName)
	if err != nil {
		return nil, errors.BackendUnavailable("xlrd-go", err)
	}
	return sheet, nil
}

func (r *XLSReader) SheetBounds(sheetName string) (CellRange, error) {
	if r.closed {
		return CellRange{}, errClosed()
	}
	sheet, err := r.sheet(sheetName)
	if err != nil {
		return CellRange{}, err
	}
	return countBounds(sheet), nil
}

// countBounds derives the used rectangle from NRows/NCols. They are counts,
// not max indexes: subtract one for the zero-indexed end coordinate.
func countBounds(sheet *xlrd.Sheet) CellRange {
	if sheet.NRows == 0 || sheet.NCols == 0 {
		return CellRange{} // degenerate A1:A1
	}
	return CellRange{EndCol: sheet.NCols - 1, EndRow: sheet.NRows - 1}
}

func (r *XLSReader) CellsInRange(sheetName, rangeNotation string) ([]CellData, error) {
	if r.closed {
		return nil, errClosed()
	}
	rng, err := ParseRange(rangeNotation)
	if err != nil {
		return nil, err
	}
	sheet, err := r.sheet(sheetName)
	if err != nil {
		return nil, err
	}
	return r.collectRange(sheet, rng), nil
}

// collectRange gathers cells row-major. This format does not auto-clip
// out-of-range access, so requests are clipped to [0, count) on both axes
// here.
func (r *XLSReader) collectRange(sheet *xlrd.Sheet, rng CellRange) []CellData {
	endRow := min(rng.EndRow, sheet.NRows-1)
	endCol := min(rng.EndCol, sheet.NCols-1)

	var cells []CellData
	for row := rng.StartRow; row <= endRow; row++ {
		for col := rng.StartCol; col <= endCol; col++ {
			cell := sheet.Cell(row, col)
			cells = append(cells, CellData{
				Address:    FormatAddress(col, row),
				Value:      r.cellValue(cell),
				Formatting: r.cellFormatting(cell),
			})
		}
	}
	return cells
}

func (r *XLSReader) ScanUntilEmpty(sheetName, startCell string, dir Direction) ([]CellData, error) {
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
	sheet, err := r.sheet(sheetName)
	if err != nil {
		return nil, err
	}
	return r.scanCells(sheet, col, row, dCol, dRow), nil
}

// scanCells walks from (col, row) along the delta, stopping on an empty
// cell or the first coordinate outside [0, count) on either axis.
func (r *XLSReader) scanCells(sheet *xlrd.Sheet, col, row, dCol, dRow int) []CellData {
	var cells []CellData
	for i := 0; i < scanIterationCap; i++ {
		if row < 0 || col < 0 || row >= sheet.NRows || col >= sheet.NCols {
			break
		}
		cell := sheet.Cell(row, col)
		value := r.cellValue(cell)
		if value.IsEmpty() {
			break
		}
		cells = append(cells, CellData{
			Address:    FormatAddress(col, row),
			Value:      value,
			Formatting: r.cellFormatting(cell),
		})
		col += dCol
		row += dRow
	}
	return cells
}

// Close releases the BIFF stream. The underlying library is effectively
// stateless on close; repeated calls are a no-op for consistency with the
// other backends.
func (r *XLSReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.book.ReleaseResources()
	return nil
}

// cellValue dispatches on the cell's BIFF type tag. Date cells carry a
// serial number that is normalized to a YYYY-MM-DD calendar string here;
// this conversion has no equivalent in the other two backends.
func (r *XLSReader) cellValue(cell *xlrd.Cell) Value {
	if cell == nil {
		return EmptyValue()
	}
	switch cell.CType {
	case xlrd.XL_CELL_EMPTY, xlrd.XL_CELL_BLANK:
		return EmptyValue()
	case xlrd.XL_CELL_TEXT:
		if s, ok := cell.Value.(string); ok {
			return TextValue(s)
		}
		return TextValue(fmt.Sprint(cell.Value))
	case xlrd.XL_CELL_NUMBER:
		if f, ok := toFloat(cell.Value); ok {
			return NumberValue(f)
		}
		return TextValue(fmt.Sprint(cell.Value))
	case xlrd.XL_CELL_DATE:
		serial, ok := toFloat(cell.Value)
		if !ok {
			return TextValue(fmt.Sprint(cell.Value))
		}
		year, month, day, _, _, _, err := xlrd.XldateAsTuple(serial, r.book.Datemode)
		if err != nil {
			// Out-of-range serials stay numeric rather than failing the read.
			return NumberValue(serial)
		}
		return DateValue(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
	case xlrd.XL_CELL_BOOLEAN:
		return BoolValue(toBool(cell.Value))
	default:
		return TextValue(fmt.Sprint(cell.Value))
	}
}

// cellFormatting resolves the cell's style-record index into the shared
// font/format/alignment tables. Formatting is best-effort: any lookup
// failure along the chain degrades to an empty map.
func (r *XLSReader) cellFormatting(cell *xlrd.Cell) map[string]interface{} {
	formatting := map[string]interface{}{}
	if cell == nil {
		return formatting
	}
	if cell.XFIndex < 0 || cell.XFIndex >= len(r.book.XFList) {
		return formatting
	}
	xf := r.book.XFList[cell.XFIndex]
	if xf == nil {
		return formatting
	}
	if xf.FontIndex >= 0 && xf.FontIndex < len(r.book.FontList) {
		if font := r.book.FontList[xf.FontIndex]; font != nil {
			formatting["bold"] = font.Bold
			formatting["italic"] = font.Italic
			formatting["underline"] = font.Underline != 0
			formatting["font_size"] = float64(font.Height) / 20 // twips to points
			if rgb, ok := r.book.ColourMap[font.ColourIndex]; ok {
				formatting["font_color"] = fmt.Sprintf("%02X%02X%02X", rgb[0], rgb[1], rgb[2])
			}
		}
	}
	if format, ok := r.book.FormatMap[xf.FormatKey]; ok && format != nil {
		formatting["number_format"] = format.FormatString
	}
	if xf.Alignment != nil {
		formatting["horizontal_alignment"] = xf.Alignment.Horizontal
		formatting["vertical_alignment"] = xf.Alignment.Vertical
	}
	if xf.Border != nil {
		formatting["has_border"] = xf.Border.Left != 0 || xf.Border.Right != 0 ||
			xf.Border.Top != 0 || xf.Border.Bottom != 0
	}
	if xf.Background != nil {
		if rgb, ok := r.book.ColourMap[xf.Background.PatternColourIndex]; ok {
			formatting["fill_color"] = fmt.Sprintf("%02X%02X%02X", rgb[0], rgb[1], rgb[2])
		}
	}
	return formatting
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int:
		return b != 0
	case int64:
		return b != 0
	}
	return false
}
