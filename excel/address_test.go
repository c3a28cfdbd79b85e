package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

func TestColumnToLetters(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnToLetters(tt.col), "col %d", tt.col)
	}
}

func TestLettersToColumnRoundtrip(t *testing.T) {
	for col := 0; col < 2000; col++ {
		letters := ColumnToLetters(col)
		got, err := LettersToColumn(letters)
		require.NoError(t, err)
		assert.Equal(t, col, got, "letters %s", letters)
	}
}

func TestLettersToColumnInvalid(t *testing.T) {
	for _, letters := range []string{"", "A1", "-", "É"} {
		_, err := LettersToColumn(letters)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidAddress), "letters %q", letters)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		text    string
		wantCol int
		wantRow int
	}{
		{"A1", 0, 0},
		{"A3", 0, 2},
		{"B2", 1, 1},
		{"aa10", 26, 9},
		{"$C$5", 2, 4}, // absolute markers are ignored
		{"ZZ100", 701, 99},
	}
	for _, tt := range tests {
		col, row, err := ParseAddress(tt.text)
		require.NoError(t, err, "address %q", tt.text)
		assert.Equal(t, tt.wantCol, col, "address %q col", tt.text)
		assert.Equal(t, tt.wantRow, row, "address %q row", tt.text)
	}
}

func TestParseAddressInvalid(t *testing.T) {
	for _, text := range []string{"", "A", "3", "A0", "!!"} {
		_, _, err := ParseAddress(text)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidAddress), "address %q", text)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		text string
		want CellRange
	}{
		{"A1:C3", CellRange{0, 0, 2, 2}},
		{"B2:B2", CellRange{1, 1, 1, 1}},
		// single address is the degenerate single-cell range
		{"D7", CellRange{3, 6, 3, 6}},
		// reversed ranges are preserved, not normalized
		{"C3:A1", CellRange{2, 2, 0, 0}},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.text)
		require.NoError(t, err, "range %q", tt.text)
		assert.Equal(t, tt.want, got, "range %q", tt.text)
	}
}

func TestParseRangeInvalid(t *testing.T) {
	for _, text := range []string{"", ":", "A1:", ":C3"} {
		_, err := ParseRange(text)
		assert.Error(t, err, "range %q", text)
	}
}

func TestFormatRangeRoundtrip(t *testing.T) {
	for _, text := range []string{"A1:C3", "B2:B2", "AA10:ZZ100"} {
		rng, err := ParseRange(text)
		require.NoError(t, err)
		assert.Equal(t, text, FormatRange(rng))
	}
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "A1", FormatAddress(0, 0))
	assert.Equal(t, "AA10", FormatAddress(26, 9))
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "Down", " LEFT ", "right"} {
		_, ok := ParseDirection(s)
		assert.True(t, ok, "direction %q", s)
	}
	_, ok := ParseDirection("diagonal")
	assert.False(t, ok)
}
