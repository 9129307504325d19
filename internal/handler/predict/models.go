package predict

import "encoding/json"

// Request is the /predict body: a batch of positional rows. Cells stay raw
// here so the frame builder can decode them strictly against the bundle
// schema instead of letting the JSON binder coerce types.
type Request struct {
	Input [][]json.RawMessage `json:"input" binding:"required"`
}

// Response carries one prediction per input row, in input order.
type Response struct {
	Prediction []float64 `json:"prediction"`
}
