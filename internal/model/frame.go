package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FeatureValue is one decoded cell of a request row.
type FeatureValue struct {
	Kind FeatureKind
	Str  string
	Num  float64
	Bool bool
}

// Frame is a column-aligned batch of decoded rows, ready for inference.
// Row order is preserved end to end so predictions map back positionally.
type Frame struct {
	schema Schema
	rows   [][]FeatureValue
}

func (f *Frame) Len() int {
	return len(f.rows)
}

func (f *Frame) Row(i int) []FeatureValue {
	return f.rows[i]
}

func (f *Frame) Schema() Schema {
	return f.schema
}

// BuildFrame decodes a batch of positional rows against the schema. Every
// error out of here is a request error: wrong row length, wrong cell type.
// Cells are decoded strictly per column kind; a JSON string "true" in a
// boolean column is rejected, never coerced.
func BuildFrame(schema Schema, input [][]json.RawMessage) (*Frame, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("input is empty, expected at least one row")
	}
	rows := make([][]FeatureValue, len(input))
	for i, raw := range input {
		if len(raw) != len(schema) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(raw), len(schema))
		}
		row := make([]FeatureValue, len(schema))
		for j, cell := range raw {
			v, err := decodeCell(schema[j], cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d (%s): %w", i, j, schema[j].Name, err)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return &Frame{schema: schema, rows: rows}, nil
}

// decodeCell is strict about the literal shape before unmarshalling: JSON
// null is a no-op for string and bool targets in encoding/json and would
// otherwise pass silently as a zero value.
func decodeCell(feature Feature, cell json.RawMessage) (FeatureValue, error) {
	trimmed := trimSpace(cell)
	if len(trimmed) == 0 {
		return FeatureValue{}, fmt.Errorf("missing value")
	}
	switch feature.Kind {
	case KindCategorical:
		var s string
		if trimmed[0] != '"' || json.Unmarshal(cell, &s) != nil {
			return FeatureValue{}, fmt.Errorf("expected JSON string, got %s", jsonKind(cell))
		}
		return FeatureValue{Kind: KindCategorical, Str: s}, nil
	case KindNumeric:
		var n json.Number
		if !isNumberLiteral(cell) || json.Unmarshal(cell, &n) != nil {
			return FeatureValue{}, fmt.Errorf("expected JSON number, got %s", jsonKind(cell))
		}
		f, err := n.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return FeatureValue{}, fmt.Errorf("value %q is not a finite number", n.String())
		}
		return FeatureValue{Kind: KindNumeric, Num: f}, nil
	case KindBoolean:
		var b bool
		if (trimmed[0] != 't' && trimmed[0] != 'f') || json.Unmarshal(cell, &b) != nil {
			return FeatureValue{}, fmt.Errorf("expected JSON boolean, got %s", jsonKind(cell))
		}
		return FeatureValue{Kind: KindBoolean, Bool: b}, nil
	default:
		return FeatureValue{}, fmt.Errorf("unsupported feature kind %q", feature.Kind)
	}
}

// json.Unmarshal into json.Number accepts quoted numbers, so number cells
// are additionally checked to be bare literals.
func isNumberLiteral(cell json.RawMessage) bool {
	trimmed := trimSpace(cell)
	if len(trimmed) == 0 {
		return false
	}
	c := trimmed[0]
	if c != '-' && (c < '0' || c > '9') {
		return false
	}
	_, err := strconv.ParseFloat(string(trimmed), 64)
	return err == nil
}

func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isJSONSpace(b[start]) {
		start++
	}
	for end > start && isJSONSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func jsonKind(cell json.RawMessage) string {
	trimmed := trimSpace(cell)
	if len(trimmed) == 0 {
		return "empty value"
	}
	switch trimmed[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
