package ml

import (
	"fmt"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"

	ClassifierLinear       = "linear"
	ClassifierDecisionTree = "decision_tree"
	ClassifierONNX         = "onnx"
)

// LoadScaler decodes a scaler artifact of the given kind.
func LoadScaler(kind string, payload []byte) (Scaler, error) {
	var (
		scaler Scaler
		err    error
	)
	switch kind {
	case ScalerStandard:
		var s *StandardScaler
		s, err = DecodeStandardScaler(payload)
		scaler = s
	case ScalerMinMax:
		var s *MinMaxScaler
		s, err = DecodeMinMaxScaler(payload)
		scaler = s
	default:
		return nil, fmt.Errorf("unsupported scaler type %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return scaler, nil
}

// LoadClassifier decodes a classifier artifact of the given kind.
func LoadClassifier(kind string, payload []byte, onnx ONNXOptions) (Classifier, error) {
	var (
		classifier Classifier
		err        error
	)
	switch kind {
	case ClassifierLinear:
		var c *LinearClassifier
		c, err = DecodeLinearClassifier(payload)
		classifier = c
	case ClassifierDecisionTree:
		var c *DecisionTree
		c, err = DecodeDecisionTree(payload)
		classifier = c
	case ClassifierONNX:
		var c *ONNXClassifier
		c, err = DecodeONNXClassifier(payload, onnx)
		classifier = c
	default:
		return nil, fmt.Errorf("unsupported model type %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return classifier, nil
}
