package ml

import (
	"encoding/json"
	"fmt"
	"math"
)

// LinearClassifier labels a vector 1 when coef·x + intercept > 0.
// Linear SVMs and logistic regressions both export to this form.
type LinearClassifier struct {
	Coef      FeatureVector
	Intercept float64
}

type linearClassifierFile struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// DecodeLinearClassifier reads a LinearClassifier from its JSON artifact.
func DecodeLinearClassifier(payload []byte) (*LinearClassifier, error) {
	var file linearClassifierFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode linear classifier: %w", err)
	}
	coef, err := vectorFromSlice(file.Coef)
	if err != nil {
		return nil, fmt.Errorf("coef: %w", err)
	}
	if err := checkFinite(coef); err != nil {
		return nil, err
	}
	if math.IsNaN(file.Intercept) || math.IsInf(file.Intercept, 0) {
		return nil, fmt.Errorf("intercept is not finite")
	}
	return &LinearClassifier{Coef: coef, Intercept: file.Intercept}, nil
}

// DecisionFunction returns the signed distance of v from the separating hyperplane.
func (c *LinearClassifier) DecisionFunction(v FeatureVector) float64 {
	sum := c.Intercept
	for i, value := range v {
		sum += c.Coef[i] * value
	}
	return sum
}

func (c *LinearClassifier) Predict(v FeatureVector) (int, error) {
	if c.DecisionFunction(v) > 0 {
		return 1, nil
	}
	return 0, nil
}
