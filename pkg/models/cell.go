package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CellKind identifies the scalar type held by a CellValue
type CellKind string

const (
	CellKindString CellKind = "string"
	CellKindNumber CellKind = "number"
	CellKindBool   CellKind = "boolean"
	CellKindNull   CellKind = "null"
)

// CellValue is a typed scalar stored in a reference row. Rows are validated
// once at ingestion; lookups never see raw any-typed values.
type CellValue struct {
	Kind    CellKind
	Str     string
	Num     float64
	BoolVal bool
}

// NullCell is the zero cell
var NullCell = CellValue{Kind: CellKindNull}

// StringCell creates a string-valued cell
func StringCell(s string) CellValue {
	return CellValue{Kind: CellKindString, Str: s}
}

// NumberCell creates a numeric cell
func NumberCell(n float64) CellValue {
	return CellValue{Kind: CellKindNumber, Num: n}
}

// BoolCell creates a boolean cell
func BoolCell(b bool) CellValue {
	return CellValue{Kind: CellKindBool, BoolVal: b}
}

// IsNull reports whether the cell holds no value
func (c CellValue) IsNull() bool {
	return c.Kind == CellKindNull || c.Kind == ""
}

// String renders the cell as the string used for matching and display.
// Null cells render as the empty string.
func (c CellValue) String() string {
	switch c.Kind {
	case CellKindString:
		return c.Str
	case CellKindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellKindBool:
		return strconv.FormatBool(c.BoolVal)
	default:
		return ""
	}
}

// MarshalJSON renders the cell as its plain JSON scalar
func (c CellValue) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellKindString:
		return json.Marshal(c.Str)
	case CellKindNumber:
		return json.Marshal(c.Num)
	case CellKindBool:
		return json.Marshal(c.BoolVal)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar. Objects and arrays are rejected;
// reference rows hold scalars only.
func (c *CellValue) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	cell, err := CellFromAny(v)
	if err != nil {
		return err
	}
	*c = cell
	return nil
}

// CellFromAny converts a decoded JSON value to a CellValue
func CellFromAny(v any) (CellValue, error) {
	switch val := v.(type) {
	case nil:
		return NullCell, nil
	case string:
		return StringCell(val), nil
	case float64:
		return NumberCell(val), nil
	case bool:
		return BoolCell(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return NullCell, err
		}
		return NumberCell(f), nil
	default:
		return NullCell, fmt.Errorf("unsupported cell value type %T", v)
	}
}

// ReferenceRow maps column names to typed cell values
type ReferenceRow map[string]CellValue

// Get returns the cell for a column. Missing columns read as null.
func (r ReferenceRow) Get(column string) CellValue {
	if cell, ok := r[column]; ok {
		return cell
	}
	return NullCell
}
