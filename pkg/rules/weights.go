package rules

import "fmt"

// Default confidence per source.
const (
	DefaultDirectWeight     = 0.9
	DefaultRepositoryWeight = 0.7
	DefaultInferenceWeight  = 0.5
	DefaultRegistryWeight   = 0.8
)

// Weights assigns a confidence to each rule source. They are loaded from the
// [weights] table of the config file.
type Weights struct {
	Direct     float64 `toml:"direct" json:"direct"`
	Repository float64 `toml:"repository" json:"repository"`
	Inference  float64 `toml:"inference" json:"inference"`
	Registry   float64 `toml:"registry" json:"registry"`
}

// DefaultWeights returns the built-in confidences.
func DefaultWeights() Weights {
	return Weights{
		Direct:     DefaultDirectWeight,
		Repository: DefaultRepositoryWeight,
		Inference:  DefaultInferenceWeight,
		Registry:   DefaultRegistryWeight,
	}
}

// WithDefaults returns [DefaultWeights] for the zero Weights and w unchanged
// otherwise, so a weight set to 0 stays 0 and drops that source below any
// positive confidence floor. Partial tables are merged over the defaults
// when the config file is decoded.
func (w Weights) WithDefaults() Weights {
	if w == (Weights{}) {
		return DefaultWeights()
	}
	return w
}

// For returns the confidence for rules from src, or 0 for unknown sources.
func (w Weights) For(src Source) float64 {
	switch src {
	case SourceDirect:
		return w.Direct
	case SourceRepository:
		return w.Repository
	case SourceInference:
		return w.Inference
	case SourceRegistry:
		return w.Registry
	}
	return 0
}

// Validate checks every weight lies in [0,1].
func (w Weights) Validate() error {
	for _, src := range Sources {
		if v := w.For(src); v < 0 || v > 1 {
			return fmt.Errorf("weight %s = %.2f out of range [0,1]", src, v)
		}
	}
	return nil
}
