package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const standardScalerJSON = `{
	"feature_names": ["Pregnancies","Glucose","BloodPressure","SkinThickness","Insulin","BMI","DiabetesPedigreeFunction","Age"],
	"mean":  [3.845, 120.894, 69.105, 20.536, 79.799, 31.992, 0.471, 33.240],
	"scale": [3.367, 31.952, 19.343, 15.942, 115.168, 7.879, 0.331, 11.752]
}`

func TestStandardScalerTransform(t *testing.T) {
	scaler, err := DecodeStandardScaler([]byte(standardScalerJSON))
	require.NoError(t, err)

	out := scaler.Transform(scaler.Mean)
	for i, value := range out {
		assert.InDelta(t, 0, value, 1e-12, "feature %d", i)
	}

	in := scaler.Mean
	in[Glucose] += scaler.Scale[Glucose] * 2
	out = scaler.Transform(in)
	assert.InDelta(t, 2, out[Glucose], 1e-9)
}

func TestStandardScalerZeroScale(t *testing.T) {
	scaler := &StandardScaler{Mean: FeatureVector{1, 1, 1, 1, 1, 1, 1, 1}}
	out := scaler.Transform(FeatureVector{3, 3, 3, 3, 3, 3, 3, 3})
	assert.Equal(t, FeatureVector{2, 2, 2, 2, 2, 2, 2, 2}, out)
}

func TestDecodeStandardScalerErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `nope`},
		{"short mean", `{"mean":[1,2],"scale":[1,1,1,1,1,1,1,1]}`},
		{"missing scale", `{"mean":[1,1,1,1,1,1,1,1]}`},
		{"wrong names", `{"feature_names":["a","b","c","d","e","f","g","h"],"mean":[1,1,1,1,1,1,1,1],"scale":[1,1,1,1,1,1,1,1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStandardScaler([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestMinMaxScalerTransform(t *testing.T) {
	scaler, err := DecodeMinMaxScaler([]byte(`{"min":[0,0,0,0,0,0,0,21],"max":[17,199,122,99,846,67.1,2.42,21]}`))
	require.NoError(t, err)

	out := scaler.Transform(FeatureVector{17, 0, 61, 99, 0, 67.1, 2.42, 50})
	assert.InDelta(t, 1, out[Pregnancies], 1e-12)
	assert.InDelta(t, 0, out[Glucose], 1e-12)
	assert.InDelta(t, 0.5, out[BloodPressure], 1e-12)
	assert.InDelta(t, 1, out[BMI], 1e-12)
	assert.Equal(t, 0.0, out[Age], "zero range maps to 0")
}

func TestDecodeMinMaxScalerRejectsInvertedRange(t *testing.T) {
	_, err := DecodeMinMaxScaler([]byte(`{"min":[1,0,0,0,0,0,0,0],"max":[0,1,1,1,1,1,1,1]}`))
	assert.Error(t, err)
}
