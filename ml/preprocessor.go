package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// StandardScaler applies (x - mean) / scale per feature.
type StandardScaler struct {
	Mean  FeatureVector
	Scale FeatureVector
}

// MinMaxScaler applies (x - min) / (max - min) per feature.
type MinMaxScaler struct {
	Min FeatureVector
	Max FeatureVector
}

type standardScalerFile struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

type minMaxScalerFile struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Min          []float64 `json:"min"`
	Max          []float64 `json:"max"`
}

func (s *StandardScaler) Transform(v FeatureVector) FeatureVector {
	var out FeatureVector
	for i, value := range v {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (value - s.Mean[i]) / scale
	}
	return out
}

func (s *MinMaxScaler) Transform(v FeatureVector) FeatureVector {
	var out FeatureVector
	for i, value := range v {
		out[i] = NormalizeFeature(value, s.Min[i], s.Max[i])
	}
	return out
}

// NormalizeFeature scales value into [0, 1] for the observed range; a zero range maps to 0.
func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

// DecodeStandardScaler reads a StandardScaler from its JSON artifact.
func DecodeStandardScaler(payload []byte) (*StandardScaler, error) {
	var file standardScalerFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode standard scaler: %w", err)
	}
	if err := checkFeatureNames(file.FeatureNames); err != nil {
		return nil, err
	}
	mean, err := vectorFromSlice(file.Mean)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	scale, err := vectorFromSlice(file.Scale)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	if err := checkFinite(mean, scale); err != nil {
		return nil, err
	}
	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// DecodeMinMaxScaler reads a MinMaxScaler from its JSON artifact.
func DecodeMinMaxScaler(payload []byte) (*MinMaxScaler, error) {
	var file minMaxScalerFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode minmax scaler: %w", err)
	}
	if err := checkFeatureNames(file.FeatureNames); err != nil {
		return nil, err
	}
	mins, err := vectorFromSlice(file.Min)
	if err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}
	maxs, err := vectorFromSlice(file.Max)
	if err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}
	if err := checkFinite(mins, maxs); err != nil {
		return nil, err
	}
	for i := range mins {
		if maxs[i] < mins[i] {
			return nil, fmt.Errorf("feature %s: max %v below min %v", fields[i].Name, maxs[i], mins[i])
		}
	}
	return &MinMaxScaler{Min: mins, Max: maxs}, nil
}

func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != NumFeatures {
		return fmt.Errorf("feature_names: %w", errFeatureLength(len(names)))
	}
	for i, name := range names {
		if name != fields[i].Name {
			return fmt.Errorf("feature_names[%d] = %q, want %q", i, name, fields[i].Name)
		}
	}
	return nil
}

func checkFinite(vectors ...FeatureVector) error {
	for _, v := range vectors {
		for _, value := range v {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return errors.New("artifact contains non-finite parameter")
			}
		}
	}
	return nil
}
