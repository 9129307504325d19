package model

import "fmt"

// encoder is the fitted preprocessing step: categoricals expand to one-hot
// blocks in fitted category order, booleans map to 0/1, numerics pass
// through. An unseen category encodes as an all-zeros block, mirroring the
// handle-unknown behavior the bundle was trained with.
type encoder struct {
	schema Schema
	// categoryIndex[j] maps category -> offset within feature j's block
	categoryIndex []map[string]int
	// blockOffset[j] is the start of feature j in the encoded vector
	blockOffset []int
	width       int
}

func newEncoder(schema Schema) *encoder {
	enc := &encoder{
		schema:        schema,
		categoryIndex: make([]map[string]int, len(schema)),
		blockOffset:   make([]int, len(schema)),
	}
	offset := 0
	for j, f := range schema {
		enc.blockOffset[j] = offset
		switch f.Kind {
		case KindCategorical:
			idx := make(map[string]int, len(f.Categories))
			for k, c := range f.Categories {
				idx[c] = k
			}
			enc.categoryIndex[j] = idx
			offset += len(f.Categories)
		default:
			offset++
		}
	}
	enc.width = offset
	return enc
}

// Width is the length of the encoded feature vector the forest splits on.
func (e *encoder) Width() int {
	return e.width
}

func (e *encoder) transform(row []FeatureValue) ([]float64, error) {
	if len(row) != len(e.schema) {
		return nil, fmt.Errorf("row has %d values, encoder fitted on %d", len(row), len(e.schema))
	}
	x := make([]float64, e.width)
	for j, v := range row {
		offset := e.blockOffset[j]
		switch e.schema[j].Kind {
		case KindCategorical:
			if k, ok := e.categoryIndex[j][v.Str]; ok {
				x[offset+k] = 1
			}
			// unseen category: block stays all zeros
		case KindNumeric:
			x[offset] = v.Num
		case KindBoolean:
			if v.Bool {
				x[offset] = 1
			}
		}
	}
	return x, nil
}
