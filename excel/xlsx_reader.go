package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

// XLSXReader reads XML-based workbooks (.xlsx/.xlsm) through excelize.
// The workbook is opened eagerly; formula cells resolve to their cached
// computed values and no formula text is exposed. Access is random and
// cheap, so this backend carries no caches of its own.
type XLSXReader struct {
	path   string
	file   *excelize.File
	closed bool
}

// OpenXLSX opens an XML-based workbook.
func OpenXLSX(path string) (*XLSXReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IOFailure(path, err)
	}
	return &XLSXReader{path: path, file: f}, nil
}

func (r *XLSXReader) SheetNames() []string {
	if r.closed {
		return nil
	}
	return r.file.GetSheetList()
}

func (r *XLSXReader) SheetBounds(sheetName string) (CellRange, error) {
	if r.closed {
		return CellRange{}, errClosed()
	}
	if !containsSheet(r.file.GetSheetList(), sheetName) {
		return CellRange{}, errors.SheetNotFound(sheetName)
	}
	// The format tracks its own used range (1-indexed natively); ParseRange
	// re-derives the zero-indexed equivalent.
	if dim, err := r.file.GetSheetDimension(sheetName); err == nil && dim != "" {
		if rng, perr := ParseRange(dim); perr == nil {
			if !(rng.SingleCell() && rng.StartCol == 0 && rng.StartRow == 0) {
				return rng, nil
			}
		}
	}
	// Dimension metadata absent, unparsable, or the ambiguous "A1" stub
	// some writers leave behind: derive the extent from the row data.
	rows, err := r.file.GetRows(sheetName)
	if err != nil {
		return CellRange{}, errors.IOFailure(r.path, err)
	}
	maxRow, maxCol := -1, -1
	for i, row := range rows {
		for j := len(row) - 1; j >= 0; j-- {
			if strings.TrimSpace(row[j]) != "" {
				maxRow = i
				if j > maxCol {
					maxCol = j
				}
				break
			}
		}
	}
	if maxRow < 0 {
		return CellRange{}, nil // degenerate A1:A1
	}
	return CellRange{EndCol: maxCol, EndRow: maxRow}, nil
}

func (r *XLSXReader) CellsInRange(sheetName, rangeNotation string) ([]CellData, error) {
	if r.closed {
		return nil, errClosed()
	}
	rng, err := ParseRange(rangeNotation)
	if err != nil {
		return nil, err
	}
	bounds, err := r.SheetBounds(sheetName)
	if err != nil {
		return nil, err
	}
	endRow := min(rng.EndRow, bounds.EndRow)
	endCol := min(rng.EndCol, bounds.EndCol)

	var cells []CellData
	for row := rng.StartRow; row <= endRow; row++ {
		for col := rng.StartCol; col <= endCol; col++ {
			addr := FormatAddress(col, row)
			raw, err := r.file.GetCellValue(sheetName, addr)
			if err != nil {
				return nil, errors.IOFailure(r.path, err)
			}
			cells = append(cells, CellData{
				Address:    addr,
				Value:      classifyText(raw),
				Formatting: r.cellFormatting(sheetName, addr),
			})
		}
	}
	return cells, nil
}

func (r *XLSXReader) ScanUntilEmpty(sheetName, startCell string, dir Direction) ([]CellData, error) {
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
	bounds, err := r.SheetBounds(sheetName)
	if err != nil {
		return nil, err
	}

	var cells []CellData
	for i := 0; i < scanIterationCap; i++ {
		raw, err := r.file.GetCellValue(sheetName, FormatAddress(col, row))
		if err != nil {
			break // past the addressable grid counts as out of bounds
		}
		value := classifyText(raw)
		if value.IsEmpty() {
			break
		}
		cells = append(cells, CellData{
			Address:    FormatAddress(col, row),
			Value:      value,
			Formatting: r.cellFormatting(sheetName, FormatAddress(col, row)),
		})
		col += dCol
		row += dRow
		// The zero-indexed cursor is compared against the sheet's tracked
		// max bounds; bounds here are already re-derived to zero-indexed.
		if col < 0 || row < 0 || col > bounds.EndCol || row > bounds.EndRow {
			break
		}
	}
	return cells, nil
}

func (r *XLSXReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.file.Close(); err != nil {
		return errors.IOFailure(r.path, err)
	}
	return nil
}

// builtinNumFmt covers the built-in number format IDs commonly seen in the
// wild; IDs outside this table are reported as absent.
var builtinNumFmt = map[int]string{
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	49: "@",
}

// cellFormatting extracts font, fill, border, number-format, and alignment
// properties for one cell. Formatting is advisory: any failure along the
// style lookup chain degrades to an empty map.
func (r *XLSXReader) cellFormatting(sheetName, addr string) map[string]interface{} {
	formatting := map[string]interface{}{}
	styleID, err := r.file.GetCellStyle(sheetName, addr)
	if err != nil {
		return formatting
	}
	style, err := r.file.GetStyle(styleID)
	if err != nil || style == nil {
		return formatting
	}
	if style.Font != nil {
		formatting["bold"] = style.Font.Bold
		formatting["italic"] = style.Font.Italic
		formatting["underline"] = style.Font.Underline != ""
		formatting["font_size"] = style.Font.Size
		if style.Font.Color != "" {
			formatting["font_color"] = style.Font.Color
		}
	}
	if style.Fill.Type == "pattern" && style.Fill.Pattern > 0 && len(style.Fill.Color) > 0 {
		formatting["fill_color"] = style.Fill.Color[0]
	}
	hasBorder := false
	for _, b := range style.Border {
		if b.Style != 0 {
			hasBorder = true
			break
		}
	}
	formatting["has_border"] = hasBorder
	if style.CustomNumFmt != nil {
		formatting["number_format"] = *style.CustomNumFmt
	} else if s, ok := builtinNumFmt[style.NumFmt]; ok {
		formatting["number_format"] = s
	}
	if style.Alignment != nil {
		if style.Alignment.Horizontal != "" {
			formatting["horizontal_alignment"] = style.Alignment.Horizontal
		}
		if style.Alignment.Vertical != "" {
			formatting["vertical_alignment"] = style.Alignment.Vertical
		}
	}
	return formatting
}
