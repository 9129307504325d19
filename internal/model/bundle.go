package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/getaround-ml/pricing-inference/internal/compression"
	"github.com/rs/zerolog/log"
)

const artifactVersion = 1

// Artifact is the on-disk form of the trained bundle: the fitted schema
// (with category vocabularies) plus the forest, exported to JSON by the
// training pipeline and optionally zstd-compressed.
type Artifact struct {
	Version   int       `json:"version"`
	CreatedAt string    `json:"created_at,omitempty"`
	Features  []Feature `json:"features"`
	Forest    Forest    `json:"forest"`
}

// Bundle is the loaded model: immutable after Load and safe for concurrent
// Predict calls.
type Bundle struct {
	schema  Schema
	encoder *encoder
	forest  *Forest
}

// Load reads, decompresses and validates a bundle artifact. Any failure here
// is fatal to the caller: the service must not come up without a model.
func Load(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle artifact: %w", err)
	}
	dec, err := compression.GetDecoder(compression.SniffType(path))
	if err != nil {
		return nil, err
	}
	data, err := dec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decompressing bundle artifact %s: %w", path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("unmarshalling bundle artifact %s: %w", path, err)
	}
	bundle, err := FromArtifact(&artifact)
	if err != nil {
		return nil, fmt.Errorf("invalid bundle artifact %s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("features", len(bundle.schema)).
		Int("trees", len(bundle.forest.Trees)).
		Msg("Model bundle loaded")
	return bundle, nil
}

// FromArtifact validates the artifact and builds the runtime bundle.
func FromArtifact(artifact *Artifact) (*Bundle, error) {
	if artifact.Version != artifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d, expected %d", artifact.Version, artifactVersion)
	}
	schema := Schema(artifact.Features)
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	enc := newEncoder(schema)
	if err := artifact.Forest.validate(enc.Width()); err != nil {
		return nil, err
	}
	return &Bundle{
		schema:  schema,
		encoder: enc,
		forest:  &artifact.Forest,
	}, nil
}

func (b *Bundle) Schema() Schema {
	return b.schema
}

func (b *Bundle) FeatureCount() int {
	return len(b.schema)
}

func (b *Bundle) TreeCount() int {
	return len(b.forest.Trees)
}

// Predict runs the forest over every frame row and returns one prediction
// per row, in input order. The batch is all-or-nothing: the first failing
// row fails the whole call.
func (b *Bundle) Predict(frame *Frame) ([]float64, error) {
	predictions := make([]float64, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		x, err := b.encoder.transform(frame.Row(i))
		if err != nil {
			return nil, fmt.Errorf("encoding row %d: %w", i, err)
		}
		predictions[i] = b.forest.predict(x)
	}
	return predictions, nil
}

// PredictRow is the single-row variant used by the prediction memo.
func (b *Bundle) PredictRow(row []FeatureValue) (float64, error) {
	x, err := b.encoder.transform(row)
	if err != nil {
		return 0, err
	}
	return b.forest.predict(x), nil
}
