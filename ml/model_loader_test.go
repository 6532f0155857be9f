package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearClassifier(t *testing.T) {
	model, err := DecodeLinearClassifier([]byte(`{"coef":[0.2,1.1,-0.2,0.0,-0.1,0.7,0.3,0.2],"intercept":-0.8}`))
	require.NoError(t, err)

	label, err := model.Predict(FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	label, err = model.Predict(FeatureVector{0, 1, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
	assert.InDelta(t, 0.3, model.DecisionFunction(FeatureVector{0, 1, 0, 0, 0, 0, 0, 0}), 1e-12)
}

func TestDecodeLinearClassifierErrors(t *testing.T) {
	_, err := DecodeLinearClassifier([]byte(`{"coef":[1,2,3]}`))
	assert.ErrorIs(t, err, ErrFieldCount)

	_, err = DecodeLinearClassifier([]byte(`[]`))
	assert.Error(t, err)
}

func TestLoadScaler(t *testing.T) {
	scaler, err := LoadScaler(ScalerStandard, []byte(standardScalerJSON))
	require.NoError(t, err)
	assert.IsType(t, &StandardScaler{}, scaler)

	_, err = LoadScaler("pickle", []byte(standardScalerJSON))
	assert.Error(t, err)
}

func TestLoadClassifier(t *testing.T) {
	model, err := LoadClassifier(ClassifierDecisionTree, []byte(treeJSON), DefaultONNXOptions())
	require.NoError(t, err)
	assert.IsType(t, &DecisionTree{}, model)

	model, err = LoadClassifier(ClassifierLinear, []byte(`{"coef":[1,1,1,1,1,1,1,1],"intercept":0}`), DefaultONNXOptions())
	require.NoError(t, err)
	assert.IsType(t, &LinearClassifier{}, model)

	_, err = LoadClassifier("svm_rbf", nil, DefaultONNXOptions())
	assert.Error(t, err)

	_, err = LoadClassifier(ClassifierONNX, nil, DefaultONNXOptions())
	assert.Error(t, err, "empty onnx payload fails before touching the runtime")
}
