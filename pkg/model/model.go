// Package model provides the classifier boundary: the trained model is
// consumed as an opaque feature-vector-to-probability function, either
// loaded from local artifacts or called over HTTP.
package model

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeatureNames are the model inputs, in training order.
var FeatureNames = []string{
	"txn_count",
	"net_amount",
	"avg_amount",
	"amount_std",
	"dwr",
	"customer_duration_days",
	"hour_mean",
	"hour_std",
}

// Classifier scores a named feature vector into a risk probability in [0,1].
type Classifier interface {
	Predict(ctx context.Context, features map[string]float64) (float64, error)
}

// Scaler holds per-feature standardization parameters fitted at training
// time.
type Scaler struct {
	Mean map[string]float64 `yaml:"mean" json:"mean"`
	Std  map[string]float64 `yaml:"std" json:"std"`
}

// Artifacts is the serialized form of a trained model: feature list,
// logistic regression weights, and the fitted scaler.
type Artifacts struct {
	Version  string             `yaml:"version" json:"version"`
	Features []string           `yaml:"features" json:"features"`
	Weights  map[string]float64 `yaml:"weights" json:"weights"`
	Bias     float64            `yaml:"bias" json:"bias"`
	Scaler   Scaler             `yaml:"scaler" json:"scaler"`
}

// Model is a logistic regression classifier over standardized features.
// Immutable after construction and safe to share across requests.
type Model struct {
	artifacts Artifacts
}

// New validates artifacts and wraps them in an immutable Model.
func New(a Artifacts) (*Model, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("artifacts declare no features")
	}
	for _, f := range a.Features {
		if _, ok := a.Weights[f]; !ok {
			return nil, fmt.Errorf("artifacts missing weight for feature: %s", f)
		}
		if _, ok := a.Scaler.Mean[f]; !ok {
			return nil, fmt.Errorf("artifacts missing scaler mean for feature: %s", f)
		}
		if _, ok := a.Scaler.Std[f]; !ok {
			return nil, fmt.Errorf("artifacts missing scaler std for feature: %s", f)
		}
	}
	return &Model{artifacts: a}, nil
}

// LoadArtifacts reads a YAML artifacts file produced by the training job.
func LoadArtifacts(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifacts %s: %w", path, err)
	}

	var a Artifacts
	if err := yaml.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("unmarshalling model artifacts %s: %w", path, err)
	}

	return New(a)
}

// Version reports the artifact version string.
func (m *Model) Version() string {
	return m.artifacts.Version
}

// Predict scores the named feature vector. Every declared feature must be
// present; extras are ignored. The result is always in (0,1).
func (m *Model) Predict(_ context.Context, features map[string]float64) (float64, error) {
	var missing []string
	for _, f := range m.artifacts.Features {
		if _, ok := features[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return 0, fmt.Errorf("missing required features: %s", strings.Join(missing, ", "))
	}

	z := m.artifacts.Bias
	for _, f := range m.artifacts.Features {
		std := m.artifacts.Scaler.Std[f]
		if std == 0 {
			std = 1
		}
		scaled := (features[f] - m.artifacts.Scaler.Mean[f]) / std
		z += m.artifacts.Weights[f] * scaled
	}

	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
