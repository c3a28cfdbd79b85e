// Package excel locates tabular data inside spreadsheet files and exposes
// it through a uniform cell-access API. Three structurally different
// encodings (XML-based .xlsx, legacy-binary .xls, compressed-binary .xlsb)
// are presented behind one capability-equivalent Reader interface with
// consistent zero-indexed addressing, bounds, and directional-scan
// semantics. The only place format-native indexing appears is inside a
// backend's translation to its underlying library.
package excel

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Flagro/llm-excel-table-finder/internal/errors"
)

// scanIterationCap bounds a directional scan so a direction error or
// corrupted bounds can never loop unboundedly before hitting a found-empty
// or out-of-bounds condition.
const scanIterationCap = 1 << 20

// Reader is the operation set every format backend implements.
//
// A Reader owns the opened file and any backend-specific caches. It is
// not safe for concurrent use by multiple callers without external
// synchronization: the contract assumes one logical reader per open
// handle. After Close, all further operations fail; Close itself is an
// idempotent no-op when repeated.
type Reader interface {
	// SheetNames lists all sheet names in the order the file declares them.
	SheetNames() []string

	// SheetBounds returns the minimal rectangle containing all non-empty
	// cells. A sheet with no populated cells yields the degenerate range
	// A1:A1, which callers must treat as ambiguous between "one cell at
	// A1" and "empty sheet".
	SheetBounds(sheetName string) (CellRange, error)

	// CellsInRange returns the cells inside the given A1 range intersected
	// with the sheet's physical extent, row-major and column-ordered
	// within each row. Requests extending past the sheet silently clip.
	CellsInRange(sheetName, rangeNotation string) ([]CellData, error)

	// ScanUntilEmpty walks from startCell one cell at a time along the
	// direction, appending each encountered cell before checking whether
	// the next one is empty. The scan stops without including the
	// triggering empty cell, or when the next coordinate leaves the
	// sheet's physical bounds. An empty start cell yields an empty result.
	ScanUntilEmpty(sheetName, startCell string, dir Direction) ([]CellData, error)

	// Close releases underlying resources. Safe to call more than once.
	Close() error
}

// Open selects a backend by the file's extension and opens it.
func Open(path string) (Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.IOFailure(path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	log.Printf("[excel] Opening %s with %s backend", path, strings.TrimPrefix(ext, "."))
	switch ext {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path)
	case ".xls":
		return OpenXLS(path)
	case ".xlsb":
		return OpenXLSB(path)
	default:
		return nil, errors.UnsupportedFormat(ext)
	}
}

// errClosed is returned by every operation on a handle after Close.
func errClosed() error {
	return errors.New(errors.CodeIOFailure, "operation on closed workbook handle")
}

// containsSheet checks membership in a declared sheet-name list.
func containsSheet(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
