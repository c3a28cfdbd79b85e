package excel

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

// ColumnToLetters converts a zero-indexed column to its spreadsheet
// letters (0 -> "A", 25 -> "Z", 26 -> "AA"). Column letters are bijective
// base-26: there is no letter for zero, so each digit carries with
// col/26 - 1 rather than col/26.
func ColumnToLetters(col int) string {
	if col < 0 {
		return ""
	}
	var b []byte
	for col >= 0 {
		b = append([]byte{byte('A' + col%26)}, b...)
		col = col/26 - 1
	}
	return string(b)
}

// LettersToColumn converts spreadsheet column letters to a zero-indexed
// column. It is the inverse of ColumnToLetters for all col >= 0.
func LettersToColumn(letters string) (int, error) {
	if letters == "" {
		return 0, errors.InvalidAddress(letters)
	}
	col := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0, errors.InvalidAddress(letters)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// ParseAddress parses a cell reference like "A3" into a zero-indexed
// (col, row) pair. Letters are collected case-insensitively and digits as
// a contiguous run; other characters (such as "$") are ignored.
func ParseAddress(text string) (col, row int, err error) {
	var letters, digits strings.Builder
	for _, ch := range text {
		switch {
		case unicode.IsLetter(ch):
			letters.WriteRune(unicode.ToUpper(ch))
		case unicode.IsDigit(ch):
			digits.WriteRune(ch)
		}
	}
	if letters.Len() == 0 || digits.Len() == 0 {
		return 0, 0, errors.InvalidAddress(text)
	}
	col, err = LettersToColumn(letters.String())
	if err != nil {
		return 0, 0, errors.InvalidAddress(text)
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil || n < 1 {
		return 0, 0, errors.InvalidAddress(text)
	}
	return col, n - 1, nil
}

// ParseRange parses A1 range notation ("A3:C10") into a CellRange. Text
// without a colon is treated as a single-cell range. The first address
// becomes the start and the second the end without reordering: a caller
// supplying a reversed range gets a range whose start is after its end,
// which iteration treats as empty.
func ParseRange(text string) (CellRange, error) {
	if !strings.Contains(text, ":") {
		col, row, err := ParseAddress(text)
		if err != nil {
			return CellRange{}, err
		}
		return CellRange{StartCol: col, StartRow: row, EndCol: col, EndRow: row}, nil
	}
	parts := strings.SplitN(text, ":", 2)
	startCol, startRow, err := ParseAddress(parts[0])
	if err != nil {
		return CellRange{}, err
	}
	endCol, endRow, err := ParseAddress(parts[1])
	if err != nil {
		return CellRange{}, err
	}
	return CellRange{StartCol: startCol, StartRow: startRow, EndCol: endCol, EndRow: endRow}, nil
}

// FormatRange renders a CellRange in A1 notation.
func FormatRange(r CellRange) string {
	return ColumnToLetters(r.StartCol) + strconv.Itoa(r.StartRow+1) +
		":" + ColumnToLetters(r.EndCol) + strconv.Itoa(r.EndRow+1)
}

// FormatAddress renders a zero-indexed (col, row) pair in A1 notation.
func FormatAddress(col, row int) string {
	return ColumnToLetters(col) + strconv.Itoa(row+1)
}
