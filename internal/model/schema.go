package model

import "fmt"

type FeatureKind string

const (
	KindCategorical FeatureKind = "categorical"
	KindNumeric     FeatureKind = "numeric"
	KindBoolean     FeatureKind = "boolean"
)

// Feature is one column of the training-time schema. Position in the schema
// is the contract: the N-th value of every request row is always this
// feature, there is no schema negotiation on the wire.
type Feature struct {
	Name       string      `json:"name"`
	Kind       FeatureKind `json:"kind"`
	Categories []string    `json:"categories,omitempty"`
}

// Schema is the ordered feature list the bundle was fitted on.
type Schema []Feature

func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no features")
	}
	seen := make(map[string]bool, len(s))
	for i, f := range s {
		if f.Name == "" {
			return fmt.Errorf("feature %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate feature name %q", f.Name)
		}
		seen[f.Name] = true
		switch f.Kind {
		case KindCategorical:
			if len(f.Categories) == 0 {
				return fmt.Errorf("categorical feature %q has no fitted categories", f.Name)
			}
		case KindNumeric, KindBoolean:
			if len(f.Categories) != 0 {
				return fmt.Errorf("%s feature %q must not carry categories", f.Kind, f.Name)
			}
		default:
			return fmt.Errorf("feature %q has unknown kind %q", f.Name, f.Kind)
		}
	}
	return nil
}

// Names returns the feature names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}
