package excel

import (
	"strconv"
	"strings"
)

// ValueKind classifies a resolved cell value.
type ValueKind string

const (
	KindEmpty   ValueKind = "empty"
	KindText    ValueKind = "text"
	KindNumber  ValueKind = "number"
	KindBoolean ValueKind = "boolean"
	KindDate    ValueKind = "date"
)

// Value is the uniform resolved cell value shared by all backends.
// Text always holds the canonical textual rendering, so callers that only
// need display text never have to switch on Kind.
type Value struct {
	Kind   ValueKind `json:"kind"`
	Text   string    `json:"text"`
	Number float64   `json:"number,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
}

// EmptyValue returns the absent/empty value.
func EmptyValue() Value {
	return Value{Kind: KindEmpty}
}

// TextValue returns a text value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// NumberValue returns a numeric value.
func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	text := "FALSE"
	if b {
		text = "TRUE"
	}
	return Value{Kind: KindBoolean, Text: text, Bool: b}
}

// DateValue returns a normalized calendar date value (YYYY-MM-DD).
func DateValue(s string) Value {
	return Value{Kind: KindDate, Text: s}
}

// IsEmpty reports whether the value counts as empty for scan purposes:
// absent, or text that trims to the empty string.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty || strings.TrimSpace(v.Text) == ""
}

// String returns the textual rendering of the value ("" when empty).
func (v Value) String() string {
	return v.Text
}

// classifyText maps a raw textual cell rendering onto the uniform value
// kinds. Backends whose underlying library only exposes formatted strings
// use this instead of a native type tag.
func classifyText(s string) Value {
	if s == "" {
		return EmptyValue()
	}
	switch s {
	case "TRUE":
		return BoolValue(true)
	case "FALSE":
		return BoolValue(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		v := NumberValue(f)
		v.Text = s // keep the source rendering
		return v
	}
	return TextValue(s)
}

// CellData is one addressed cell: its A1 address, resolved value, and a
// mapping of formatting attribute name to value. Attributes a backend
// cannot determine are reported as absent (nil or missing key), never as
// a guessed default. CellData is a read-only snapshot and holds no
// reference back into the workbook.
type CellData struct {
	Address    string                 `json:"address"`
	Value      Value                  `json:"value"`
	Formatting map[string]interface{} `json:"formatting"`
}

// CellRange is a rectangular region, zero-indexed and inclusive on both
// ends. A single cell is the degenerate range where start equals end.
// Ranges parsed from reversed notation (start after end) are preserved
// as-is; iteration over such a range yields no cells.
type CellRange struct {
	StartCol int `json:"start_col"`
	StartRow int `json:"start_row"`
	EndCol   int `json:"end_col"`
	EndRow   int `json:"end_row"`
}

// SingleCell reports whether the range covers exactly one cell.
func (r CellRange) SingleCell() bool {
	return r.StartCol == r.EndCol && r.StartRow == r.EndRow
}

// Notation renders the range in A1 notation.
func (r CellRange) Notation() string {
	return FormatRange(r)
}

// Direction is an axis-aligned unit vector for directional scans.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Delta returns the (column, row) step for the direction.
func (d Direction) Delta() (dCol, dRow int, ok bool) {
	switch d {
	case DirectionUp:
		return 0, -1, true
	case DirectionDown:
		return 0, 1, true
	case DirectionLeft:
		return -1, 0, true
	case DirectionRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// ParseDirection converts caller-supplied text into a Direction.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if _, _, ok := d.Delta(); !ok {
		return "", false
	}
	return d, true
}
