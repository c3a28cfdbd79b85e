package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.True(t, errors.HasCode(err, errors.CodeIOFailure))
}

func TestOpenUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	_, err := Open(path)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))
}

func TestOpenDispatchesByExtension(t *testing.T) {
	path := writeFixtureXLSX(t, "Sheet1", map[string]interface{}{"A1": "x"})

	reader, err := Open(path)
	require.NoError(t, err)
	defer reader.Close()

	_, ok := reader.(*XLSXReader)
	assert.True(t, ok)
}

func TestValueIsEmpty(t *testing.T) {
	assert.True(t, EmptyValue().IsEmpty())
	assert.True(t, TextValue("   ").IsEmpty())
	assert.False(t, TextValue("x").IsEmpty())
	assert.False(t, NumberValue(0).IsEmpty())
	assert.False(t, BoolValue(false).IsEmpty())
}

func TestClassifyText(t *testing.T) {
	tests := []struct {
		raw  string
		kind ValueKind
	}{
		{"", KindEmpty},
		{"TRUE", KindBoolean},
		{"FALSE", KindBoolean},
		{"42", KindNumber},
		{"3.14", KindNumber},
		{"hello", KindText},
		{"true", KindText}, // only canonical upper-case booleans count
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, classifyText(tt.raw).Kind, "raw %q", tt.raw)
	}
	// numeric classification keeps the source rendering
	assert.Equal(t, "007", classifyText("007").Text)
}
