package inference

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"district-dashboard/internal/features"
)

const ModelTypeLinear = "linear"

// Artifact is the persisted, read-only prediction model.
type Artifact struct {
	Version      string           `json:"version"`
	Lambda       float64          `json:"lambda"`
	FeatureNames []string         `json:"feature_names"`
	Model        ModelSpec        `json:"model"`
	Schema       *features.Schema `json:"schema,omitempty"`
	Scaler       *ScalerParams    `json:"scaler,omitempty"`
}

type ModelSpec struct {
	Type         string    `json:"type"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// ScalerParams are per-feature training statistics aligned with FeatureNames.
// Entries for categorical features are ignored.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	a, err := DecodeArtifact(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) Validate() error {
	if a.Version == "" {
		return fmt.Errorf("model artifact has no version")
	}
	if math.IsNaN(a.Lambda) || math.IsInf(a.Lambda, 0) {
		return fmt.Errorf("model artifact %s: lambda is not finite", a.Version)
	}
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("model artifact %s: no feature names", a.Version)
	}
	if a.Model.Type != ModelTypeLinear {
		return fmt.Errorf("model artifact %s: unsupported model type %q", a.Version, a.Model.Type)
	}
	if len(a.Model.Coefficients) != len(a.FeatureNames) {
		return fmt.Errorf("model artifact %s: %d coefficients for %d features",
			a.Version, len(a.Model.Coefficients), len(a.FeatureNames))
	}
	for i, c := range a.Model.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("model artifact %s: coefficient of %s is not finite", a.Version, a.FeatureNames[i])
		}
	}
	if a.Scaler != nil {
		if len(a.Scaler.Mean) != len(a.FeatureNames) || len(a.Scaler.Scale) != len(a.FeatureNames) {
			return fmt.Errorf("model artifact %s: scaler does not cover every feature", a.Version)
		}
	}
	if a.Schema != nil {
		if err := a.Schema.Validate(); err != nil {
			return fmt.Errorf("model artifact %s: %w", a.Version, err)
		}
	}
	return nil
}
