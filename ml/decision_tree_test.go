package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glucose <= 0.5 -> 0, otherwise bmi <= 0.2 -> 0 else 1
const treeJSON = `[
	{"feature_idx":1,"threshold":0.5,"left_child":1,"right_child":2,"class_label":0,"is_leaf":false},
	{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":0,"is_leaf":true},
	{"feature_idx":5,"threshold":0.2,"left_child":3,"right_child":4,"class_label":1,"is_leaf":false},
	{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":0,"is_leaf":true},
	{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":1,"is_leaf":true}
]`

func TestDecisionTreePredict(t *testing.T) {
	model, err := DecodeDecisionTree([]byte(treeJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, model.Depth())

	tests := []struct {
		name    string
		glucose float64
		bmi     float64
		want    int
	}{
		{"low glucose", 0.1, 0.9, 0},
		{"threshold goes left", 0.5, 0.9, 0},
		{"high glucose low bmi", 0.9, 0.1, 0},
		{"high glucose high bmi", 0.9, 0.9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v FeatureVector
			v[Glucose] = tt.glucose
			v[BMI] = tt.bmi
			label, err := model.Predict(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, label)
		})
	}
}

func TestDecisionTreeRejectsInvalidNodes(t *testing.T) {
	tests := []struct {
		name  string
		nodes []TreeNode
	}{
		{"empty", nil},
		{"feature out of range", []TreeNode{
			{FeatureIdx: NumFeatures, LeftChild: 1, RightChild: 1},
			{IsLeaf: true},
		}},
		{"self loop", []TreeNode{
			{FeatureIdx: 0, LeftChild: 0, RightChild: 1},
			{IsLeaf: true},
		}},
		{"child out of range", []TreeNode{
			{FeatureIdx: 0, LeftChild: 1, RightChild: 5},
			{IsLeaf: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecisionTree(tt.nodes)
			assert.Error(t, err)
		})
	}
}
